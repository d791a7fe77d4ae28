package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/donations/internal/model"
)

// CreateOrganization creates a new organization.
func CreateOrganization(ctx context.Context, q Querier, name, orgType string) (*model.Organization, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO organizations (name, type) VALUES (?, ?)`,
		name, orgType,
	)
	if err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting organization id: %w", err)
	}

	return GetOrganization(ctx, q, id)
}

// GetOrganization returns an organization by ID.
func GetOrganization(ctx context.Context, q Querier, id int64) (*model.Organization, error) {
	o := &model.Organization{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, type, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&o.ID, &o.Name, &o.Type, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}
	return o, nil
}

// ListOrganizations returns all organizations, optionally filtered by type.
func ListOrganizations(ctx context.Context, q Querier, orgType string) ([]model.Organization, error) {
	query := `SELECT id, name, type, created_at FROM organizations`
	var args []any
	if orgType != "" {
		query += ` WHERE type = ?`
		args = append(args, orgType)
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	defer rows.Close()

	var orgs []model.Organization
	for rows.Next() {
		var o model.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Type, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}
