package donation

import (
	"context"

	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

// Ledger applies stock changes to items. Bound to a transaction, its writes
// commit or roll back with it.
type Ledger struct {
	q store.Querier
}

// NewLedger returns a ledger writing through q.
func NewLedger(q store.Querier) *Ledger {
	return &Ledger{q: q}
}

// Adjust adds deltaUsed and deltaNew to an item's stock and returns the
// updated item. Neither quantity may drop below zero; the check runs against
// the stored quantities before anything is written.
func (l *Ledger) Adjust(ctx context.Context, itemID int64, deltaUsed, deltaNew int) (*model.Item, error) {
	item, err := store.GetItem(ctx, l.q, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &NotFoundError{Kind: "item", Ref: ItemByID{ID: itemID}.String()}
	}

	newQty := item.QuantityNew + deltaNew
	usedQty := item.QuantityUsed + deltaUsed
	if newQty < 0 {
		return nil, &InsufficientStockError{
			ItemID: item.ID, ItemName: item.Name, Condition: model.ConditionNew,
			Requested: -deltaNew, Available: item.QuantityNew,
		}
	}
	if usedQty < 0 {
		return nil, &InsufficientStockError{
			ItemID: item.ID, ItemName: item.Name, Condition: model.ConditionUsed,
			Requested: -deltaUsed, Available: item.QuantityUsed,
		}
	}

	if err := store.SetItemStock(ctx, l.q, item.ID, newQty, usedQty, item.Version); err != nil {
		return nil, err
	}

	item.QuantityNew = newQty
	item.QuantityUsed = usedQty
	item.Version++
	return item, nil
}
