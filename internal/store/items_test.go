package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/db"
	"github.com/erazemk/donations/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, model.Item{
		Category: "Furniture", Name: "Chair",
		QuantityNew: 4, QuantityUsed: 2, ValueNew: 40, ValueUsed: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, "Chair", item.Name)
	assert.Equal(t, 4, item.QuantityNew)
	assert.Equal(t, 2, item.QuantityUsed)
	assert.Equal(t, int64(0), item.Version)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Furniture", got.Category)
	assert.InDelta(t, 15.0, got.ValueUsed, 0.001)

	missing, err := GetItem(ctx, database, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateItemRejectsNegativeStock(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CreateItem(context.Background(), database, model.Item{Category: "Beds", Name: "Crib", QuantityNew: -1})
	assert.Error(t, err)
}

func TestFindItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, model.Item{Category: "Furniture", Name: "Table"})
	CreateItem(ctx, database, model.Item{Category: "Kitchen", Name: "Table"})
	CreateItem(ctx, database, model.Item{Category: "Kitchen", Name: "Pot"})

	byName, err := FindItemsByName(ctx, database, "Table")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byBoth, err := FindItemsByCategoryAndName(ctx, database, "Kitchen", "Table")
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, "Kitchen", byBoth[0].Category)

	none, err := FindItemsByCategoryAndName(ctx, database, "Garden", "Table")
	require.NoError(t, err)
	assert.Empty(t, none)

	kitchen, err := ListItems(ctx, database, "Kitchen")
	require.NoError(t, err)
	assert.Len(t, kitchen, 2)

	all, err := ListItems(ctx, database, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSetItemStockChecksVersion(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, model.Item{Category: "Beds", Name: "Mattress", QuantityNew: 5})

	require.NoError(t, SetItemStock(ctx, database, item.ID, 3, 0, item.Version))

	got, _ := GetItem(ctx, database, item.ID)
	assert.Equal(t, 3, got.QuantityNew)
	assert.Equal(t, item.Version+1, got.Version)

	// Writing with the stale version must not clobber the newer value.
	err := SetItemStock(ctx, database, item.ID, 1, 0, item.Version)
	assert.ErrorIs(t, err, ErrStockConflict)

	got, _ = GetItem(ctx, database, item.ID)
	assert.Equal(t, 3, got.QuantityNew)
}

func TestSetItemStockRejectsNegative(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, model.Item{Category: "Beds", Name: "Mattress", QuantityNew: 1})

	err := SetItemStock(ctx, database, item.ID, -1, 0, item.Version)
	assert.Error(t, err)
}
