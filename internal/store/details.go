package store

import (
	"context"
	"fmt"

	"github.com/erazemk/donations/internal/model"
)

// ListDonationDetails returns a donation's lines joined with item names and values.
func ListDonationDetails(ctx context.Context, q Querier, donationID int64) ([]model.DonationDetail, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT dd.donation_id, dd.item_id, dd.new_quantity, dd.used_quantity,
		        i.name, i.value_new, i.value_used
		 FROM donation_details dd
		 JOIN items i ON i.id = dd.item_id
		 WHERE dd.donation_id = ?
		 ORDER BY i.category, i.name`, donationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing donation details: %w", err)
	}
	defer rows.Close()

	var details []model.DonationDetail
	for rows.Next() {
		var d model.DonationDetail
		if err := rows.Scan(&d.DonationID, &d.ItemID, &d.NewQuantity, &d.UsedQuantity,
			&d.ItemName, &d.ValueNew, &d.ValueUsed); err != nil {
			return nil, fmt.Errorf("scanning donation detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// UpsertDonationDetail creates or replaces the line for an item within a donation.
func UpsertDonationDetail(ctx context.Context, q Querier, donationID, itemID int64, newQuantity, usedQuantity int) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO donation_details (donation_id, item_id, new_quantity, used_quantity)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (donation_id, item_id) DO UPDATE
		 SET new_quantity = excluded.new_quantity, used_quantity = excluded.used_quantity`,
		donationID, itemID, newQuantity, usedQuantity,
	)
	if err != nil {
		return fmt.Errorf("saving donation detail: %w", err)
	}
	return nil
}

// DeleteDonationDetail removes an item's line from a donation.
func DeleteDonationDetail(ctx context.Context, q Querier, donationID, itemID int64) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM donation_details WHERE donation_id = ? AND item_id = ?`,
		donationID, itemID,
	)
	if err != nil {
		return fmt.Errorf("deleting donation detail: %w", err)
	}
	return nil
}
