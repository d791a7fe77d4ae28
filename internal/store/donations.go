package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/donations/internal/model"
)

// CreateDonation records a new donation header.
func CreateDonation(ctx context.Context, q Querier, userID int64, direction string, date time.Time) (*model.Donation, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO donations (user_id, direction, date) VALUES (?, ?, ?)`,
		userID, direction, date,
	)
	if err != nil {
		return nil, fmt.Errorf("creating donation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting donation id: %w", err)
	}

	return GetDonation(ctx, q, id)
}

// GetDonation returns a donation by ID.
func GetDonation(ctx context.Context, q Querier, id int64) (*model.Donation, error) {
	d := &model.Donation{}
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, direction, date, created_at FROM donations WHERE id = ?`, id,
	).Scan(&d.ID, &d.UserID, &d.Direction, &d.Date, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting donation: %w", err)
	}
	return d, nil
}

// UpdateDonationDate sets a donation's date.
func UpdateDonationDate(ctx context.Context, q Querier, id int64, date time.Time) error {
	_, err := q.ExecContext(ctx, `UPDATE donations SET date = ? WHERE id = ?`, date, id)
	if err != nil {
		return fmt.Errorf("updating donation date: %w", err)
	}
	return nil
}

// DeleteDonation deletes a donation together with its details and stats.
func DeleteDonation(ctx context.Context, q Querier, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM donations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting donation: %w", err)
	}
	return nil
}

// CountDonations returns the number of donations, optionally filtered by direction.
func CountDonations(ctx context.Context, q Querier, direction string) (int, error) {
	query := `SELECT COUNT(*) FROM donations`
	var args []any
	if direction != "" {
		query += ` WHERE direction = ?`
		args = append(args, direction)
	}

	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting donations: %w", err)
	}
	return n, nil
}

// ListDonationSummaries returns one page of donations, newest first, with
// their lines split into new and used entries and valued at the items'
// current unit values. Pages start at 1.
func ListDonationSummaries(ctx context.Context, q Querier, direction string, page, pageSize int) ([]model.DonationSummary, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("page and page size must be positive")
	}

	query := `SELECT d.id, d.date, d.direction, o.name, o.type
	          FROM donations d
	          JOIN users u ON u.id = d.user_id
	          LEFT JOIN organizations o ON o.id = u.organization_id
	          WHERE 1=1`
	var args []any
	if direction != "" {
		query += ` AND d.direction = ?`
		args = append(args, direction)
	}
	query += ` ORDER BY d.date DESC, d.id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}

	var summaries []model.DonationSummary
	for rows.Next() {
		var s model.DonationSummary
		var orgName, orgType sql.NullString
		if err := rows.Scan(&s.ID, &s.Date, &s.Direction, &orgName, &orgType); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning donation: %w", err)
		}
		s.Organization = model.IndividualDonor
		s.Type = model.IndividualDonor
		if orgName.Valid {
			s.Organization = orgName.String
			s.Type = orgType.String
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	rows.Close()

	for i := range summaries {
		details, err := ListDonationDetails(ctx, q, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].Details = summaryEntries(details)
		summaries[i].Items = len(summaries[i].Details)
		for _, e := range summaries[i].Details {
			summaries[i].Total += e.Total
		}
	}

	return summaries, nil
}

func summaryEntries(details []model.DonationDetail) []model.SummaryEntry {
	entries := []model.SummaryEntry{}
	for _, d := range details {
		if d.UsedQuantity > 0 {
			entries = append(entries, model.SummaryEntry{
				ItemID:   d.ItemID,
				Item:     d.ItemName,
				Status:   model.ConditionUsed,
				Value:    d.ValueUsed,
				Quantity: d.UsedQuantity,
				Total:    float64(d.UsedQuantity) * d.ValueUsed,
			})
		}
		if d.NewQuantity > 0 {
			entries = append(entries, model.SummaryEntry{
				ItemID:   d.ItemID,
				Item:     d.ItemName,
				Status:   model.ConditionNew,
				Value:    d.ValueNew,
				Quantity: d.NewQuantity,
				Total:    float64(d.NewQuantity) * d.ValueNew,
			})
		}
	}
	return entries
}
