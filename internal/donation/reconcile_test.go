package donation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/model"
)

func itemIDs(changes []Change) []int64 {
	ids := make([]int64, 0, len(changes))
	for _, c := range changes {
		ids = append(ids, c.ItemID)
	}
	return ids
}

func TestReconcileSets(t *testing.T) {
	previous := []Line{
		{ItemID: 1, NewQuantity: 2},
		{ItemID: 2, UsedQuantity: 3},
		{ItemID: 3, NewQuantity: 1, UsedQuantity: 1},
	}
	proposed := []Line{
		{ItemID: 2, UsedQuantity: 1},
		{ItemID: 3, NewQuantity: 1, UsedQuantity: 1},
		{ItemID: 4, NewQuantity: 5},
	}

	plan, err := Reconcile(previous, proposed)
	require.NoError(t, err)

	assert.Equal(t, []int64{4}, itemIDs(plan.Added))
	assert.Equal(t, []int64{2, 3}, itemIDs(plan.Updated))
	assert.Equal(t, []int64{1}, itemIDs(plan.Removed))
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, plan.ItemIDs())

	assert.ElementsMatch(t, []Adjustment{
		{ItemID: 1, DeltaNew: 2},
		{ItemID: 2, DeltaUsed: 2},
		{ItemID: 4, DeltaNew: -5},
	}, plan.Adjustments())
}

func TestReconcileIdenticalLinesHasNoAdjustments(t *testing.T) {
	lines := []Line{{ItemID: 1, NewQuantity: 2, UsedQuantity: 1}, {ItemID: 2, UsedQuantity: 4}}

	plan, err := Reconcile(lines, lines)
	require.NoError(t, err)
	assert.Empty(t, plan.Added)
	assert.Empty(t, plan.Removed)
	assert.Len(t, plan.Updated, 2)
	assert.Empty(t, plan.Adjustments())
}

func TestReconcileRejectsBadLines(t *testing.T) {
	tests := []struct {
		name     string
		proposed []Line
		field    string
	}{
		{"negative new", []Line{{ItemID: 1, NewQuantity: -1}}, "donationDetails[0]"},
		{"negative used", []Line{{ItemID: 1}, {ItemID: 2, UsedQuantity: -3}}, "donationDetails[1]"},
		{"duplicate item", []Line{{ItemID: 1, NewQuantity: 1}, {ItemID: 1, UsedQuantity: 1}}, "donationDetails[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(nil, tt.proposed)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPlanValidate(t *testing.T) {
	stock := map[int64]model.Item{
		1: {ID: 1, Name: "Chair", QuantityNew: 3, QuantityUsed: 0},
	}

	t.Run("previous allocation counts as available", func(t *testing.T) {
		plan, err := Reconcile(
			[]Line{{ItemID: 1, NewQuantity: 2}},
			[]Line{{ItemID: 1, NewQuantity: 5}},
		)
		require.NoError(t, err)
		assert.NoError(t, plan.Validate(stock))
	})

	t.Run("more than stock plus previous", func(t *testing.T) {
		plan, err := Reconcile(
			[]Line{{ItemID: 1, NewQuantity: 2}},
			[]Line{{ItemID: 1, NewQuantity: 6}},
		)
		require.NoError(t, err)

		var serr *InsufficientStockError
		require.True(t, errors.As(plan.Validate(stock), &serr))
		assert.Equal(t, int64(1), serr.ItemID)
		assert.Equal(t, "Chair", serr.ItemName)
		assert.Equal(t, model.ConditionNew, serr.Condition)
		assert.Equal(t, 6, serr.Requested)
		assert.Equal(t, 5, serr.Available)
		assert.Equal(t, 1, serr.Shortfall())
	})

	t.Run("used condition checked separately", func(t *testing.T) {
		plan, err := Reconcile(nil, []Line{{ItemID: 1, UsedQuantity: 1}})
		require.NoError(t, err)

		var serr *InsufficientStockError
		require.True(t, errors.As(plan.Validate(stock), &serr))
		assert.Equal(t, model.ConditionUsed, serr.Condition)
	})

	t.Run("unknown item", func(t *testing.T) {
		plan, err := Reconcile(nil, []Line{{ItemID: 9, NewQuantity: 1}})
		require.NoError(t, err)

		var nerr *NotFoundError
		assert.True(t, errors.As(plan.Validate(stock), &nerr))
	})

	t.Run("removed lines are not checked", func(t *testing.T) {
		plan, err := Reconcile([]Line{{ItemID: 9, NewQuantity: 100}}, nil)
		require.NoError(t, err)
		assert.NoError(t, plan.Validate(stock))
	})
}
