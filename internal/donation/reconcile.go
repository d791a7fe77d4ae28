package donation

import (
	"fmt"

	"github.com/erazemk/donations/internal/model"
)

// Line is one item's quantities within a donation.
type Line struct {
	ItemID       int64
	NewQuantity  int
	UsedQuantity int
}

// Change pairs an item's previous and proposed line. Previous is zero for
// added items, Proposed is zero for removed ones.
type Change struct {
	ItemID   int64
	Previous Line
	Proposed Line
}

// DeltaNew is the signed change to the item's new stock.
func (c Change) DeltaNew() int { return c.Previous.NewQuantity - c.Proposed.NewQuantity }

// DeltaUsed is the signed change to the item's used stock.
func (c Change) DeltaUsed() int { return c.Previous.UsedQuantity - c.Proposed.UsedQuantity }

// Adjustment is a signed stock change for one item. Negative values consume
// stock, positive values return it.
type Adjustment struct {
	ItemID    int64
	DeltaNew  int
	DeltaUsed int
}

// Plan is the difference between a donation's stored lines and a proposed
// replacement. Added, Updated and Removed never share an item.
type Plan struct {
	Added   []Change
	Updated []Change
	Removed []Change
}

// Reconcile compares the previous lines of a donation (empty for a new one)
// with the proposed lines. Proposed lines must have non-negative quantities
// and list each item at most once.
func Reconcile(previous, proposed []Line) (*Plan, error) {
	prev := make(map[int64]Line, len(previous))
	for _, l := range previous {
		prev[l.ItemID] = l
	}

	plan := &Plan{}
	seen := make(map[int64]bool, len(proposed))
	for i, l := range proposed {
		field := fmt.Sprintf("donationDetails[%d]", i)
		if l.NewQuantity < 0 || l.UsedQuantity < 0 {
			return nil, invalid(field, "quantities must be non-negative integers")
		}
		if seen[l.ItemID] {
			return nil, invalid(field, "item %d is listed more than once", l.ItemID)
		}
		seen[l.ItemID] = true

		if p, ok := prev[l.ItemID]; ok {
			plan.Updated = append(plan.Updated, Change{ItemID: l.ItemID, Previous: p, Proposed: l})
		} else {
			plan.Added = append(plan.Added, Change{ItemID: l.ItemID, Previous: Line{ItemID: l.ItemID}, Proposed: l})
		}
	}

	for _, l := range previous {
		if !seen[l.ItemID] {
			plan.Removed = append(plan.Removed, Change{ItemID: l.ItemID, Previous: l, Proposed: Line{ItemID: l.ItemID}})
		}
	}

	return plan, nil
}

// Kept returns the added and updated changes, i.e. every line that will
// exist once the plan is applied.
func (p *Plan) Kept() []Change {
	kept := make([]Change, 0, len(p.Added)+len(p.Updated))
	kept = append(kept, p.Added...)
	return append(kept, p.Updated...)
}

// ItemIDs returns every item the plan touches.
func (p *Plan) ItemIDs() []int64 {
	ids := make([]int64, 0, len(p.Added)+len(p.Updated)+len(p.Removed))
	for _, c := range p.Kept() {
		ids = append(ids, c.ItemID)
	}
	for _, c := range p.Removed {
		ids = append(ids, c.ItemID)
	}
	return ids
}

// Validate checks every kept line against current stock before anything is
// changed. A line may draw on the item's current stock plus whatever this
// donation already held of it, since that allocation is returned first.
func (p *Plan) Validate(stock map[int64]model.Item) error {
	for _, c := range p.Kept() {
		item, ok := stock[c.ItemID]
		if !ok {
			return &NotFoundError{Kind: "item", Ref: ItemByID{ID: c.ItemID}.String()}
		}

		if available := item.QuantityNew + c.Previous.NewQuantity; c.Proposed.NewQuantity > available {
			return &InsufficientStockError{
				ItemID: item.ID, ItemName: item.Name, Condition: model.ConditionNew,
				Requested: c.Proposed.NewQuantity, Available: available,
			}
		}
		if available := item.QuantityUsed + c.Previous.UsedQuantity; c.Proposed.UsedQuantity > available {
			return &InsufficientStockError{
				ItemID: item.ID, ItemName: item.Name, Condition: model.ConditionUsed,
				Requested: c.Proposed.UsedQuantity, Available: available,
			}
		}
	}
	return nil
}

// Adjustments returns the stock changes needed to apply the plan, skipping
// items whose quantities did not change.
func (p *Plan) Adjustments() []Adjustment {
	var adjs []Adjustment
	all := append(p.Kept(), p.Removed...)
	for _, c := range all {
		if c.DeltaNew() == 0 && c.DeltaUsed() == 0 {
			continue
		}
		adjs = append(adjs, Adjustment{ItemID: c.ItemID, DeltaNew: c.DeltaNew(), DeltaUsed: c.DeltaUsed()})
	}
	return adjs
}
