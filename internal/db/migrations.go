package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: category+name is the lookup path for items referenced by
	// the public donation form.
	`CREATE INDEX IF NOT EXISTS idx_items_category_name ON items(category, name)`,
	// Migration 2: listing a donation's lines and an item's donations.
	`CREATE INDEX IF NOT EXISTS idx_donation_details_item ON donation_details(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_donations_date ON donations(date)`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
