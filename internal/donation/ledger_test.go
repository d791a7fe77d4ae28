package donation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/db"
	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

func TestLedgerAdjust(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := store.CreateItem(ctx, database, model.Item{Category: "Kitchen", Name: "Pan", QuantityNew: 5, QuantityUsed: 2})
	require.NoError(t, err)

	ledger := NewLedger(database)

	updated, err := ledger.Adjust(ctx, item.ID, -2, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.QuantityNew)
	assert.Equal(t, 0, updated.QuantityUsed)

	stored, _ := store.GetItem(ctx, database, item.ID)
	assert.Equal(t, 8, stored.QuantityNew)
	assert.Equal(t, 0, stored.QuantityUsed)
	assert.Equal(t, updated.Version, stored.Version)
}

func TestLedgerAdjustRefusesNegativeStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := store.CreateItem(ctx, database, model.Item{Category: "Kitchen", Name: "Pot", QuantityNew: 1, QuantityUsed: 4})
	ledger := NewLedger(database)

	_, err := ledger.Adjust(ctx, item.ID, -5, 0)
	var serr *InsufficientStockError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Equal(t, model.ConditionUsed, serr.Condition)
	assert.Equal(t, 5, serr.Requested)
	assert.Equal(t, 4, serr.Available)

	_, err = ledger.Adjust(ctx, item.ID, 0, -2)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, model.ConditionNew, serr.Condition)

	stored, _ := store.GetItem(ctx, database, item.ID)
	assert.Equal(t, 1, stored.QuantityNew)
	assert.Equal(t, 4, stored.QuantityUsed)
	assert.Equal(t, item.Version, stored.Version)
}

func TestLedgerAdjustUnknownItem(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := NewLedger(database).Adjust(context.Background(), 404, 1, 1)
	var nerr *NotFoundError
	assert.True(t, errors.As(err, &nerr))
}
