package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/donations/internal/model"
)

const itemColumns = `id, category, name, quantity_new, quantity_used, value_new, value_used,
	version, created_at, updated_at`

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	err := s.Scan(&item.ID, &item.Category, &item.Name, &item.QuantityNew, &item.QuantityUsed,
		&item.ValueNew, &item.ValueUsed, &item.Version, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func queryItems(ctx context.Context, q Querier, query string, args ...any) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateItem creates a new item with its initial stock.
func CreateItem(ctx context.Context, q Querier, item model.Item) (*model.Item, error) {
	if item.QuantityNew < 0 || item.QuantityUsed < 0 {
		return nil, fmt.Errorf("initial stock must not be negative")
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO items (category, name, quantity_new, quantity_used, value_new, value_used)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.Category, item.Name, item.QuantityNew, item.QuantityUsed, item.ValueNew, item.ValueUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, q Querier, id int64) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// FindItemsByCategoryAndName returns every item with the given category and name.
func FindItemsByCategoryAndName(ctx context.Context, q Querier, category, name string) ([]model.Item, error) {
	items, err := queryItems(ctx, q,
		`SELECT `+itemColumns+` FROM items WHERE category = ? AND name = ? ORDER BY id`,
		category, name,
	)
	if err != nil {
		return nil, fmt.Errorf("finding items by category and name: %w", err)
	}
	return items, nil
}

// FindItemsByName returns every item with the given name, in any category.
func FindItemsByName(ctx context.Context, q Querier, name string) ([]model.Item, error) {
	items, err := queryItems(ctx, q,
		`SELECT `+itemColumns+` FROM items WHERE name = ? ORDER BY id`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("finding items by name: %w", err)
	}
	return items, nil
}

// ListItems returns all items, optionally filtered by category.
func ListItems(ctx context.Context, q Querier, category string) ([]model.Item, error) {
	var items []model.Item
	var err error

	if category != "" {
		items, err = queryItems(ctx, q,
			`SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY category, name`, category,
		)
	} else {
		items, err = queryItems(ctx, q,
			`SELECT `+itemColumns+` FROM items ORDER BY category, name`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// SetItemStock writes an item's stock if its version still matches the one
// the caller read, and bumps the version. A mismatch yields ErrStockConflict.
func SetItemStock(ctx context.Context, q Querier, id int64, quantityNew, quantityUsed int, version int64) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items
		 SET quantity_new = ?, quantity_used = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ?`,
		quantityNew, quantityUsed, id, version,
	)
	if err != nil {
		return fmt.Errorf("setting item stock: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking item stock update: %w", err)
	}
	if n == 0 {
		return ErrStockConflict
	}
	return nil
}
