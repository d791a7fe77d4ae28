package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/donations/internal/model"
)

// UpsertOutgoingStats creates or replaces the demographic record of an
// outgoing donation.
func UpsertOutgoingStats(ctx context.Context, q Querier, s model.OutgoingStats) (*model.OutgoingStats, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO outgoing_donation_stats
		     (donation_id, number_served, white_num, latino_num, black_num, native_num, asian_num, other_num)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (donation_id) DO UPDATE SET
		     number_served = excluded.number_served,
		     white_num = excluded.white_num,
		     latino_num = excluded.latino_num,
		     black_num = excluded.black_num,
		     native_num = excluded.native_num,
		     asian_num = excluded.asian_num,
		     other_num = excluded.other_num`,
		s.DonationID, s.NumberServed, s.WhiteNum, s.LatinoNum, s.BlackNum, s.NativeNum, s.AsianNum, s.OtherNum,
	)
	if err != nil {
		return nil, fmt.Errorf("saving outgoing donation stats: %w", err)
	}
	return GetOutgoingStats(ctx, q, s.DonationID)
}

// GetOutgoingStats returns the demographic record of an outgoing donation.
func GetOutgoingStats(ctx context.Context, q Querier, donationID int64) (*model.OutgoingStats, error) {
	s := &model.OutgoingStats{}
	err := q.QueryRowContext(ctx,
		`SELECT donation_id, number_served, white_num, latino_num, black_num, native_num, asian_num, other_num
		 FROM outgoing_donation_stats WHERE donation_id = ?`, donationID,
	).Scan(&s.DonationID, &s.NumberServed, &s.WhiteNum, &s.LatinoNum, &s.BlackNum, &s.NativeNum, &s.AsianNum, &s.OtherNum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting outgoing donation stats: %w", err)
	}
	return s, nil
}
