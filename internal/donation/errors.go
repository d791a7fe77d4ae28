package donation

import "fmt"

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a user, item or donation reference that matches nothing.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for %s", e.Kind, e.Ref)
}

// AmbiguousReferenceError reports an item reference that matches more than one item.
type AmbiguousReferenceError struct {
	Ref     string
	Matches int
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("%s is ambiguous: %d items match", e.Ref, e.Matches)
}

// InsufficientStockError reports a request for more units of an item than
// are in stock plus what the donation itself already holds.
type InsufficientStockError struct {
	ItemID    int64
	ItemName  string
	Condition string
	Requested int
	Available int
}

// Shortfall is how many units are missing.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough %s stock for item %q: requested %d, available %d (short by %d)",
		e.Condition, e.ItemName, e.Requested, e.Available, e.Shortfall())
}
