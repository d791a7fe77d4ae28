package donation

import (
	"context"
	"fmt"

	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

// ItemReference identifies an item either by ID or by category and name.
type ItemReference interface {
	fmt.Stringer
	itemReference()
}

// ItemByID references an item by its ID.
type ItemByID struct {
	ID int64
}

// ItemByCategoryAndName references an item by its category and name.
type ItemByCategoryAndName struct {
	Category string
	Name     string
}

func (ItemByID) itemReference()              {}
func (ItemByCategoryAndName) itemReference() {}

func (r ItemByID) String() string { return fmt.Sprintf("item id %d", r.ID) }

func (r ItemByCategoryAndName) String() string {
	return fmt.Sprintf("item (%q, %q)", r.Category, r.Name)
}

// itemName names an item regardless of category, as incoming products do.
type itemName string

func (n itemName) String() string { return fmt.Sprintf("item name %q", string(n)) }

// UserReference identifies a user either by ID or by email.
type UserReference interface {
	fmt.Stringer
	userReference()
}

// UserByID references a user by ID.
type UserByID struct {
	ID int64
}

// UserByEmail references an active user by email.
type UserByEmail struct {
	Email string
}

func (UserByID) userReference()    {}
func (UserByEmail) userReference() {}

func (r UserByID) String() string    { return fmt.Sprintf("user id %d", r.ID) }
func (r UserByEmail) String() string { return fmt.Sprintf("email %q", r.Email) }

func resolveUser(ctx context.Context, q store.Querier, ref UserReference) (*model.User, error) {
	var user *model.User
	var err error

	switch r := ref.(type) {
	case UserByID:
		user, err = store.GetUser(ctx, q, r.ID)
		if user != nil && user.DeletedAt != nil {
			user = nil
		}
	case UserByEmail:
		user, err = store.GetUserByEmail(ctx, q, r.Email)
	default:
		return nil, invalid("user", "a user id or email is required")
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Kind: "user", Ref: ref.String()}
	}
	return user, nil
}

func resolveItem(ctx context.Context, q store.Querier, ref ItemReference) (*model.Item, error) {
	switch r := ref.(type) {
	case ItemByID:
		item, err := store.GetItem(ctx, q, r.ID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, &NotFoundError{Kind: "item", Ref: ref.String()}
		}
		return item, nil
	case ItemByCategoryAndName:
		items, err := store.FindItemsByCategoryAndName(ctx, q, r.Category, r.Name)
		if err != nil {
			return nil, err
		}
		return exactlyOne(items, ref)
	default:
		return nil, invalid("item", "an item id or a category and name is required")
	}
}

func exactlyOne(items []model.Item, ref fmt.Stringer) (*model.Item, error) {
	switch len(items) {
	case 0:
		return nil, &NotFoundError{Kind: "item", Ref: ref.String()}
	case 1:
		return &items[0], nil
	default:
		return nil, &AmbiguousReferenceError{Ref: ref.String(), Matches: len(items)}
	}
}
