package commands

import (
	"context"
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/shared"
)

var (
	ErrIdempotencyKeyReused = errs.NewMarked("idempotency key was used for a different request", errs.ErrInvalidInput)
	ErrCouplingBroken       = errs.NewMarked("booking, reservation and escrow disagree", errs.ErrInvariantViolation)
)

// Settings are fixed for the lifetime of the process.
type Settings struct {
	FeeRate  money.BasisPoints
	Platform party.Identity
}

// BookingResult is the committed state of one booking.
type BookingResult struct {
	Booking  *booking.Booking
	Hold     *escrow.Hold
	Replayed bool
}

type base struct {
	uow      shared.UnitOfWork
	clock    clock.Clock
	settings Settings
}

func (b base) now() (now, today time.Time) {
	now = b.clock.Now().UTC()
	return now, clock.DateOf(now)
}

func loadListing(ctx context.Context, tx shared.Tx, id listing.ID) (*listing.Listing, error) {
	l, err := tx.Listings().Get(ctx, id)
	if err != nil {
		return nil, translate(err, listing.ErrListingMissing, "listing %d", id)
	}
	return l, nil
}

func loadBooking(ctx context.Context, tx shared.Tx, id booking.ID) (*booking.Booking, error) {
	b, err := tx.Bookings().Get(ctx, id)
	if err != nil {
		return nil, translate(err, booking.ErrBookingMissing, "booking %d", id)
	}
	return b, nil
}

// loadHold treats a missing hold as corruption: every persisted booking has one.
func loadHold(ctx context.Context, tx shared.Tx, id booking.ID) (*escrow.Hold, error) {
	h, err := tx.Escrow().GetHold(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Wrapf(ErrCouplingBroken, "booking %d has no escrow hold", id)
		}
		return nil, err
	}
	return h, nil
}

func translate(err, missing error, format string, args ...any) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Wrapf(missing, format, args...)
	}
	return err
}

// eventBuilder collects events for one unit of work and keeps the first
// payload encoding error.
type eventBuilder struct {
	actor string
	at    time.Time
	out   []event.Event
	err   error
}

func newEvents(actor party.Identity, at time.Time) *eventBuilder {
	return &eventBuilder{actor: actor.String(), at: at}
}

func (e *eventBuilder) add(kind event.Kind, entityType event.EntityType, entityID string, payload any) {
	if e.err != nil {
		return
	}
	ev, err := event.New(kind, entityType, entityID, e.actor, e.at, payload)
	if err != nil {
		e.err = err
		return
	}
	e.out = append(e.out, ev)
}

func (e *eventBuilder) append(ctx context.Context, tx shared.Tx) error {
	if e.err != nil {
		return e.err
	}
	return tx.Events().Append(ctx, e.out...)
}
