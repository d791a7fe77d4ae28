package donation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/metrics"
	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

// Stage is a step of a workflow run.
type Stage string

// Workflow stages, in order.
const (
	StageReceived   Stage = "received"
	StageValidated  Stage = "validated"
	StageReconciled Stage = "reconciled"
	StagePersisted  Stage = "persisted"
	StageSucceeded  Stage = "succeeded"
	StageFailed     Stage = "failed"
)

// Operations, as used in logs and metrics.
const (
	OpCreateOutgoing = "create_outgoing"
	OpUpdateOutgoing = "update_outgoing"
	OpDeleteOutgoing = "delete_outgoing"
	OpCreateIncoming = "create_incoming"
)

// LineRequest is one requested item line of an outgoing donation.
type LineRequest struct {
	Item         ItemReference
	NewQuantity  int
	UsedQuantity int
}

// OutgoingRequest creates or replaces an outgoing donation.
type OutgoingRequest struct {
	User UserReference
	// Date of the donation on create; zero means now. Updates always use now.
	Date  time.Time
	Lines []LineRequest
	// NumberServed is optional. When positive it must equal the sum of Demographics.
	NumberServed int
	Demographics Demographics
}

// Product is one item received in an incoming donation, matched by name.
type Product struct {
	Name     string
	Quantity int
}

// IncomingRequest records goods received.
type IncomingRequest struct {
	User     UserReference
	Date     time.Time
	Products []Product
}

// Service runs the donation workflows against a database.
type Service struct {
	db      *sql.DB
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "donation").Logger() }
}

// WithMetrics sets where workflow metrics are recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service using db.
func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:  db,
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run tracks one workflow invocation through its stages.
type run struct {
	s     *Service
	op    string
	stage Stage
	start time.Time
	log   zerolog.Logger
	moved []Adjustment
}

func (s *Service) begin(op string, donationID int64) *run {
	ctx := s.log.With().Str("op", op)
	if donationID > 0 {
		ctx = ctx.Int64("donation_id", donationID)
	}
	r := &run{s: s, op: op, start: s.now(), log: ctx.Logger()}
	r.advance(StageReceived)
	return r
}

func (r *run) advance(stage Stage) {
	r.stage = stage
	r.log.Debug().Str("stage", string(stage)).Msg("workflow stage")
}

// finish records the outcome of the run and passes err through unchanged.
func (r *run) finish(err error) error {
	outcome := outcomeOf(err)
	r.s.metrics.ObserveWorkflow(r.op, outcome, time.Since(r.start))

	if err == nil {
		for _, a := range r.moved {
			r.s.metrics.ObserveAdjustment(model.ConditionNew, a.DeltaNew)
			r.s.metrics.ObserveAdjustment(model.ConditionUsed, a.DeltaUsed)
		}
		r.advance(StageSucceeded)
		return nil
	}

	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		r.s.metrics.ObserveStockRejection(stockErr.Condition)
	}

	failedAt := r.stage
	r.stage = StageFailed
	ev := r.log.Warn()
	if outcome == "error" {
		ev = r.log.Error()
	}
	ev.Err(err).Str("failed_at", string(failedAt)).Str("outcome", outcome).Msg("workflow failed")
	return err
}

func outcomeOf(err error) string {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		ambiguous  *AmbiguousReferenceError
		stock      *InsufficientStockError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &validation):
		return "invalid"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &ambiguous):
		return "ambiguous"
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.Is(err, store.ErrStockConflict):
		return "conflict"
	default:
		return "error"
	}
}

// inTx runs fn in a transaction, committing only if fn succeeds. The
// database opens transactions with BEGIN IMMEDIATE, so the whole span holds
// the write lock and no other request can change stock in between.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// validateOutgoing checks everything that needs no database access and
// returns the number of people served.
func validateOutgoing(req OutgoingRequest) (int, error) {
	if len(req.Lines) == 0 {
		return 0, invalid("donationDetails", "at least one item is required")
	}
	for i, l := range req.Lines {
		if l.Item == nil {
			return 0, invalid(fmt.Sprintf("donationDetails[%d]", i), "an item id or a category and name is required")
		}
		if l.NewQuantity < 0 || l.UsedQuantity < 0 {
			return 0, invalid(fmt.Sprintf("donationDetails[%d]", i), "quantities must be non-negative integers")
		}
	}

	served, err := Aggregate(req.Demographics)
	if err != nil {
		return 0, err
	}
	if req.NumberServed < 0 {
		return 0, invalid("numberServed", "must be a non-negative integer, got %d", req.NumberServed)
	}
	if req.NumberServed > 0 && req.NumberServed != served {
		return 0, invalid("numberServed", "is %d but the demographic counts add up to %d", req.NumberServed, served)
	}
	return served, nil
}

// resolveLines turns requested lines into item IDs and returns the items read.
func resolveLines(ctx context.Context, q store.Querier, reqs []LineRequest) ([]Line, map[int64]model.Item, error) {
	lines := make([]Line, 0, len(reqs))
	stock := make(map[int64]model.Item, len(reqs))
	for _, r := range reqs {
		item, err := resolveItem(ctx, q, r.Item)
		if err != nil {
			return nil, nil, err
		}
		stock[item.ID] = *item
		lines = append(lines, Line{ItemID: item.ID, NewQuantity: r.NewQuantity, UsedQuantity: r.UsedQuantity})
	}
	return lines, stock, nil
}

// loadOutgoing returns an outgoing donation's stored lines, or NotFoundError
// if there is no outgoing donation with that ID.
func loadOutgoing(ctx context.Context, q store.Querier, donationID int64) ([]Line, error) {
	d, err := store.GetDonation(ctx, q, donationID)
	if err != nil {
		return nil, err
	}
	if d == nil || d.Direction != model.DirectionOutgoing {
		return nil, &NotFoundError{Kind: "outgoing donation", Ref: "id " + strconv.FormatInt(donationID, 10)}
	}

	details, err := store.ListDonationDetails(ctx, q, donationID)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(details))
	for _, dd := range details {
		lines = append(lines, Line{ItemID: dd.ItemID, NewQuantity: dd.NewQuantity, UsedQuantity: dd.UsedQuantity})
	}
	return lines, nil
}

// apply moves stock and rewrites the donation's lines according to plan.
func (r *run) apply(ctx context.Context, tx *sql.Tx, donationID int64, plan *Plan) error {
	ledger := NewLedger(tx)
	for _, a := range plan.Adjustments() {
		if _, err := ledger.Adjust(ctx, a.ItemID, a.DeltaUsed, a.DeltaNew); err != nil {
			return err
		}
		r.moved = append(r.moved, a)
	}

	for _, c := range plan.Kept() {
		if err := store.UpsertDonationDetail(ctx, tx, donationID, c.ItemID, c.Proposed.NewQuantity, c.Proposed.UsedQuantity); err != nil {
			return err
		}
	}
	for _, c := range plan.Removed {
		if err := store.DeleteDonationDetail(ctx, tx, donationID, c.ItemID); err != nil {
			return err
		}
	}
	return nil
}

// CreateOutgoing records a new outgoing donation, drawing its lines from
// stock, and returns its demographic record.
func (s *Service) CreateOutgoing(ctx context.Context, req OutgoingRequest) (_ *model.OutgoingStats, err error) {
	r := s.begin(OpCreateOutgoing, 0)
	defer func() { err = r.finish(err) }()

	served, err := validateOutgoing(req)
	if err != nil {
		return nil, err
	}

	var stats *model.OutgoingStats
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		user, err := resolveUser(ctx, tx, req.User)
		if err != nil {
			return err
		}
		lines, stock, err := resolveLines(ctx, tx, req.Lines)
		if err != nil {
			return err
		}
		r.advance(StageValidated)

		plan, err := Reconcile(nil, lines)
		if err != nil {
			return err
		}
		if err := plan.Validate(stock); err != nil {
			return err
		}
		r.advance(StageReconciled)

		date := req.Date
		if date.IsZero() {
			date = s.now()
		}
		donation, err := store.CreateDonation(ctx, tx, user.ID, model.DirectionOutgoing, date)
		if err != nil {
			return err
		}
		r.log = r.log.With().Int64("donation_id", donation.ID).Logger()

		if err := r.apply(ctx, tx, donation.ID, plan); err != nil {
			return err
		}
		stats, err = store.UpsertOutgoingStats(ctx, tx, req.Demographics.Stats(donation.ID, served))
		if err != nil {
			return err
		}
		r.advance(StagePersisted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().Int("lines", len(req.Lines)).Int("served", served).Msg("outgoing donation created")
	return stats, nil
}

// UpdateOutgoing replaces the lines and demographics of an outgoing donation.
// Stock is adjusted by the difference between the old and new lines, and the
// donation date is set to now. If req.User is set it must resolve, but the
// donation keeps its original user.
func (s *Service) UpdateOutgoing(ctx context.Context, donationID int64, req OutgoingRequest) (_ *model.OutgoingStats, err error) {
	r := s.begin(OpUpdateOutgoing, donationID)
	defer func() { err = r.finish(err) }()

	served, err := validateOutgoing(req)
	if err != nil {
		return nil, err
	}

	var stats *model.OutgoingStats
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		previous, err := loadOutgoing(ctx, tx, donationID)
		if err != nil {
			return err
		}
		if req.User != nil {
			if _, err := resolveUser(ctx, tx, req.User); err != nil {
				return err
			}
		}
		lines, stock, err := resolveLines(ctx, tx, req.Lines)
		if err != nil {
			return err
		}
		r.advance(StageValidated)

		plan, err := Reconcile(previous, lines)
		if err != nil {
			return err
		}
		if err := plan.Validate(stock); err != nil {
			return err
		}
		r.advance(StageReconciled)

		if err := r.apply(ctx, tx, donationID, plan); err != nil {
			return err
		}
		stats, err = store.UpsertOutgoingStats(ctx, tx, req.Demographics.Stats(donationID, served))
		if err != nil {
			return err
		}
		if err := store.UpdateDonationDate(ctx, tx, donationID, s.now()); err != nil {
			return err
		}
		r.advance(StagePersisted)

		r.log.Info().
			Int("added", len(plan.Added)).
			Int("updated", len(plan.Updated)).
			Int("removed", len(plan.Removed)).
			Msg("outgoing donation updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteOutgoing deletes an outgoing donation and returns all of its lines to stock.
func (s *Service) DeleteOutgoing(ctx context.Context, donationID int64) (err error) {
	r := s.begin(OpDeleteOutgoing, donationID)
	defer func() { err = r.finish(err) }()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		previous, err := loadOutgoing(ctx, tx, donationID)
		if err != nil {
			return err
		}
		r.advance(StageValidated)

		plan, err := Reconcile(previous, nil)
		if err != nil {
			return err
		}
		r.advance(StageReconciled)

		if err := r.apply(ctx, tx, donationID, plan); err != nil {
			return err
		}
		if err := store.DeleteDonation(ctx, tx, donationID); err != nil {
			return err
		}
		r.advance(StagePersisted)

		r.log.Info().Int("returned_lines", len(plan.Removed)).Msg("outgoing donation deleted")
		return nil
	})
}

// CreateIncoming records goods received. Products are matched to items by
// name; unknown names become new items in the uncategorized category.
func (s *Service) CreateIncoming(ctx context.Context, req IncomingRequest) (_ *model.Donation, err error) {
	r := s.begin(OpCreateIncoming, 0)
	defer func() { err = r.finish(err) }()

	if len(req.Products) == 0 {
		return nil, invalid("products", "at least one product is required")
	}
	names := make(map[string]bool, len(req.Products))
	for i, p := range req.Products {
		field := fmt.Sprintf("products[%d]", i)
		if p.Name == "" {
			return nil, invalid(field, "name is required")
		}
		if p.Quantity <= 0 {
			return nil, invalid(field, "quantity must be a positive integer")
		}
		if names[p.Name] {
			return nil, invalid(field, "product %q is listed more than once", p.Name)
		}
		names[p.Name] = true
	}

	var donation *model.Donation
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		user, err := resolveUser(ctx, tx, req.User)
		if err != nil {
			return err
		}
		r.advance(StageValidated)

		date := req.Date
		if date.IsZero() {
			date = s.now()
		}
		donation, err = store.CreateDonation(ctx, tx, user.ID, model.DirectionIncoming, date)
		if err != nil {
			return err
		}

		ledger := NewLedger(tx)
		for _, p := range req.Products {
			items, err := store.FindItemsByName(ctx, tx, p.Name)
			if err != nil {
				return err
			}

			var itemID int64
			if len(items) == 0 {
				created, err := store.CreateItem(ctx, tx, model.Item{
					Category:    model.UncategorizedCategory,
					Name:        p.Name,
					QuantityNew: p.Quantity,
				})
				if err != nil {
					return err
				}
				itemID = created.ID
			} else {
				item, err := exactlyOne(items, itemName(p.Name))
				if err != nil {
					return err
				}
				if _, err := ledger.Adjust(ctx, item.ID, 0, p.Quantity); err != nil {
					return err
				}
				itemID = item.ID
			}
			r.moved = append(r.moved, Adjustment{ItemID: itemID, DeltaNew: p.Quantity})

			if err := store.UpsertDonationDetail(ctx, tx, donation.ID, itemID, p.Quantity, 0); err != nil {
				return err
			}
		}
		r.advance(StagePersisted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().Int64("donation_id", donation.ID).Int("products", len(req.Products)).Msg("incoming donation recorded")
	return donation, nil
}
