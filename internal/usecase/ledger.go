package usecase

//go:generate mockgen -source=ledger.go -destination=../../tests/mock/usecase/mock_ledger.go -package=usecasemock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/commands"
	"stay-ledger/internal/usecase/queries"
)

const tracerName = "stay-ledger/ledger"

var ErrListingHalted = errs.NewMarked("listing is halted after an invariant violation", errs.ErrEntityHalted)

// Subscriber streams committed events.
type Subscriber interface {
	Subscribe() (<-chan event.Event, func())
}

type BookResult struct {
	Booking  *queries.BookingView
	Replayed bool
}

// Ledger is the single entry point to listings, bookings, escrow and reviews.
type Ledger interface {
	CreateListing(ctx context.Context, owner party.Identity, in commands.CreateListingInput) (*queries.ListingView, error)
	Deactivate(ctx context.Context, id listing.ID, caller party.Identity) (*queries.ListingView, error)
	UpdatePrice(ctx context.Context, id listing.ID, caller party.Identity, priceMinor int64) (*queries.ListingView, error)
	GetListing(ctx context.Context, id listing.ID) (*queries.ListingView, error)
	GetAvailability(ctx context.Context, id listing.ID, from, to time.Time) (*queries.AvailabilityView, error)

	Book(ctx context.Context, in commands.BookInput) (*BookResult, error)
	GetBooking(ctx context.Context, id booking.ID) (*queries.BookingView, error)
	Cancel(ctx context.Context, id booking.ID, caller party.Identity) (*queries.BookingView, error)
	CompleteIfDue(ctx context.Context, id booking.ID, actor party.Identity) (*queries.BookingView, error)
	// DueBookings lists Confirmed bookings whose check-out has been reached.
	DueBookings(ctx context.Context, limit int) ([]booking.ID, error)

	SubmitReview(ctx context.Context, bookingID booking.ID, reviewer party.Identity, rating int, comment string) (*queries.ReviewView, error)
	ListReviews(ctx context.Context, id listing.ID, afterID int64, limit int) (*queries.ReviewPage, error)

	ListEvents(ctx context.Context, afterSeq int64, limit int) (*queries.EventPage, error)
	Subscribe() (<-chan event.Event, func())

	Treasury(ctx context.Context) (*queries.TreasuryView, error)
	Balance(ctx context.Context, holder party.Identity) (*queries.AccountView, error)
	Withdraw(ctx context.Context, holder, caller party.Identity, amountMinor int64) (*queries.AccountView, error)

	IsHalted(id listing.ID) bool
}

type ledgerImpl struct {
	registry   commands.RegistryCommands
	bookings   commands.BookingCommands
	reviews    commands.ReviewCommands
	treasury   commands.TreasuryCommands
	queries    queries.LedgerQueries
	subscriber Subscriber
	clock      clock.Clock
	logger     *slog.Logger
	tracer     trace.Tracer

	mu     sync.RWMutex
	halted map[listing.ID]struct{}
}

func NewLedger(
	registry commands.RegistryCommands,
	bookings commands.BookingCommands,
	reviews commands.ReviewCommands,
	treasury commands.TreasuryCommands,
	q queries.LedgerQueries,
	subscriber Subscriber,
	clk clock.Clock,
	logger *slog.Logger,
) Ledger {
	return &ledgerImpl{
		registry:   registry,
		bookings:   bookings,
		reviews:    reviews,
		treasury:   treasury,
		queries:    q,
		subscriber: subscriber,
		clock:      clk,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		halted:     make(map[listing.ID]struct{}),
	}
}

func (l *ledgerImpl) IsHalted(id listing.ID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.halted[id]
	return ok
}

func (l *ledgerImpl) guard(id listing.ID) error {
	if l.IsHalted(id) {
		return errs.Wrapf(ErrListingHalted, "listing %d", id)
	}
	return nil
}

// observe records err on the span and quarantines the listing when err is
// an invariant violation.
func (l *ledgerImpl) observe(span trace.Span, id listing.ID, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if !errs.Is(err, errs.ErrInvariantViolation) {
		return
	}
	if id != 0 {
		l.mu.Lock()
		l.halted[id] = struct{}{}
		l.mu.Unlock()
	}
	l.logger.Error("Invariant violation, listing halted",
		slog.Int64("listing_id", id.Int64()),
		slog.String("error", err.Error()),
		slog.Any("stack", errs.ExtractStackLines(err, 20)))
}

func (l *ledgerImpl) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return l.tracer.Start(ctx, "ledger."+name, trace.WithAttributes(attrs...))
}

func listingAttr(id listing.ID) attribute.KeyValue { return attribute.Int64("listing.id", id.Int64()) }
func bookingAttr(id booking.ID) attribute.KeyValue { return attribute.Int64("booking.id", id.Int64()) }

func (l *ledgerImpl) CreateListing(ctx context.Context, owner party.Identity, in commands.CreateListingInput) (*queries.ListingView, error) {
	ctx, span := l.start(ctx, "CreateListing", attribute.String("owner", owner.String()))
	defer span.End()

	created, err := l.registry.CreateListing(ctx, owner, in)
	l.observe(span, 0, err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(listingAttr(created.ID()))
	return queries.ToListingView(created), nil
}

func (l *ledgerImpl) Deactivate(ctx context.Context, id listing.ID, caller party.Identity) (*queries.ListingView, error) {
	ctx, span := l.start(ctx, "Deactivate", listingAttr(id))
	defer span.End()

	if err := l.guard(id); err != nil {
		l.observe(span, id, err)
		return nil, err
	}
	out, err := l.registry.Deactivate(ctx, id, caller)
	l.observe(span, id, err)
	if err != nil {
		return nil, err
	}
	return queries.ToListingView(out), nil
}

func (l *ledgerImpl) UpdatePrice(ctx context.Context, id listing.ID, caller party.Identity, priceMinor int64) (*queries.ListingView, error) {
	ctx, span := l.start(ctx, "UpdatePrice", listingAttr(id))
	defer span.End()

	if err := l.guard(id); err != nil {
		l.observe(span, id, err)
		return nil, err
	}
	out, err := l.registry.UpdatePrice(ctx, id, caller, priceMinor)
	l.observe(span, id, err)
	if err != nil {
		return nil, err
	}
	return queries.ToListingView(out), nil
}

func (l *ledgerImpl) GetListing(ctx context.Context, id listing.ID) (*queries.ListingView, error) {
	if err := l.guard(id); err != nil {
		return nil, err
	}
	return l.queries.GetListing(ctx, id)
}

func (l *ledgerImpl) GetAvailability(ctx context.Context, id listing.ID, from, to time.Time) (*queries.AvailabilityView, error) {
	if err := l.guard(id); err != nil {
		return nil, err
	}
	return l.queries.GetAvailability(ctx, id, from, to)
}

func (l *ledgerImpl) Book(ctx context.Context, in commands.BookInput) (*BookResult, error) {
	ctx, span := l.start(ctx, "Book", listingAttr(in.ListingID), attribute.String("guest", in.Guest.String()))
	defer span.End()

	if err := l.guard(in.ListingID); err != nil {
		l.observe(span, in.ListingID, err)
		return nil, err
	}
	res, err := l.bookings.Book(ctx, in)
	l.observe(span, in.ListingID, err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(bookingAttr(res.Booking.ID()), attribute.Bool("replayed", res.Replayed))
	if !res.Replayed {
		l.logger.Debug("Booking confirmed",
			slog.Int64("booking_id", res.Booking.ID().Int64()),
			slog.Int64("listing_id", in.ListingID.Int64()))
	}
	return &BookResult{Booking: queries.ToBookingView(res.Booking, res.Hold), Replayed: res.Replayed}, nil
}

func (l *ledgerImpl) GetBooking(ctx context.Context, id booking.ID) (*queries.BookingView, error) {
	view, err := l.queries.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.guard(listing.ID(view.ListingID)); err != nil {
		return nil, err
	}
	return view, nil
}

// onBooking resolves the booking's listing, checks it is not halted, and
// runs op on behalf of it.
func (l *ledgerImpl) onBooking(ctx context.Context, span trace.Span, id booking.ID, op func() (*commands.BookingResult, error)) (*queries.BookingView, error) {
	lid, err := l.queries.BookingListing(ctx, id)
	if err != nil {
		l.observe(span, 0, err)
		return nil, err
	}
	span.SetAttributes(listingAttr(lid))
	if err := l.guard(lid); err != nil {
		l.observe(span, lid, err)
		return nil, err
	}
	res, err := op()
	l.observe(span, lid, err)
	if err != nil {
		return nil, err
	}
	return queries.ToBookingView(res.Booking, res.Hold), nil
}

func (l *ledgerImpl) Cancel(ctx context.Context, id booking.ID, caller party.Identity) (*queries.BookingView, error) {
	ctx, span := l.start(ctx, "Cancel", bookingAttr(id))
	defer span.End()
	return l.onBooking(ctx, span, id, func() (*commands.BookingResult, error) {
		return l.bookings.Cancel(ctx, id, caller)
	})
}

func (l *ledgerImpl) CompleteIfDue(ctx context.Context, id booking.ID, actor party.Identity) (*queries.BookingView, error) {
	ctx, span := l.start(ctx, "CompleteIfDue", bookingAttr(id), attribute.String("actor", actor.String()))
	defer span.End()
	return l.onBooking(ctx, span, id, func() (*commands.BookingResult, error) {
		return l.bookings.CompleteIfDue(ctx, id, actor)
	})
}

func (l *ledgerImpl) DueBookings(ctx context.Context, limit int) ([]booking.ID, error) {
	// halted listings are excluded by the store so they cannot use up the batch
	return l.queries.DueBookings(ctx, clock.Today(l.clock), l.haltedListings(), limit)
}

func (l *ledgerImpl) haltedListings() []listing.ID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]listing.ID, 0, len(l.halted))
	for id := range l.halted {
		out = append(out, id)
	}
	return out
}

func (l *ledgerImpl) SubmitReview(ctx context.Context, bookingID booking.ID, reviewer party.Identity, rating int, comment string) (*queries.ReviewView, error) {
	ctx, span := l.start(ctx, "SubmitReview", bookingAttr(bookingID))
	defer span.End()

	lid, err := l.queries.BookingListing(ctx, bookingID)
	if err != nil {
		l.observe(span, 0, err)
		return nil, err
	}
	if err := l.guard(lid); err != nil {
		l.observe(span, lid, err)
		return nil, err
	}
	r, err := l.reviews.Submit(ctx, bookingID, reviewer, rating, comment)
	l.observe(span, lid, err)
	if err != nil {
		return nil, err
	}
	view := queries.ToReviewView(r)
	return &view, nil
}

func (l *ledgerImpl) ListReviews(ctx context.Context, id listing.ID, afterID int64, limit int) (*queries.ReviewPage, error) {
	if err := l.guard(id); err != nil {
		return nil, err
	}
	return l.queries.ListReviews(ctx, id, afterID, limit)
}

func (l *ledgerImpl) ListEvents(ctx context.Context, afterSeq int64, limit int) (*queries.EventPage, error) {
	return l.queries.ListEvents(ctx, afterSeq, limit)
}

func (l *ledgerImpl) Subscribe() (<-chan event.Event, func()) {
	return l.subscriber.Subscribe()
}

func (l *ledgerImpl) Treasury(ctx context.Context) (*queries.TreasuryView, error) {
	ctx, span := l.start(ctx, "Treasury")
	defer span.End()

	view, err := l.queries.Treasury(ctx)
	l.observe(span, 0, err)
	if err != nil {
		return nil, err
	}
	if !view.Balanced {
		l.logger.Error("Treasury does not balance",
			slog.Int64("accepted", view.AcceptedMinor),
			slog.Int64("held", view.HeldMinor))
	}
	return view, nil
}

func (l *ledgerImpl) Balance(ctx context.Context, holder party.Identity) (*queries.AccountView, error) {
	return l.queries.Balance(ctx, holder)
}

func (l *ledgerImpl) Withdraw(ctx context.Context, holder, caller party.Identity, amountMinor int64) (*queries.AccountView, error) {
	ctx, span := l.start(ctx, "Withdraw", attribute.String("account", holder.String()))
	defer span.End()

	a, err := l.treasury.Withdraw(ctx, holder, caller, amountMinor)
	l.observe(span, 0, err)
	if err != nil {
		return nil, err
	}
	return queries.ToAccountView(a), nil
}
