package queries

import (
	"context"
	"time"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/pkg/errs"
)

var ErrInvalidWindow = errs.NewMarked("availability window must end after it starts", errs.ErrInvalidInput)

// LedgerReadStore reads committed state. Each call sees one consistent snapshot.
type LedgerReadStore interface {
	Listing(ctx context.Context, id listing.ID) (*listing.Listing, error)
	Booking(ctx context.Context, id booking.ID) (*booking.Booking, *escrow.Hold, error)
	BookingListing(ctx context.Context, id booking.ID) (listing.ID, error)
	ActiveIntervals(ctx context.Context, id listing.ID, window booking.StayRange) ([]availability.Interval, error)
	Reviews(ctx context.Context, id listing.ID, afterID review.ID, limit int) ([]*review.Review, error)
	Events(ctx context.Context, afterSeq int64, limit int) ([]event.Event, error)
	// DueBookings lists Confirmed bookings whose check-out is on or before
	// today, leaving out the skipped listings before the limit applies.
	DueBookings(ctx context.Context, today time.Time, skip []listing.ID, limit int) ([]booking.ID, error)
	Totals(ctx context.Context) (escrow.Totals, error)
	Account(ctx context.Context, holder party.Identity) (*escrow.Account, error)
}

type LedgerQueries interface {
	GetListing(ctx context.Context, id listing.ID) (*ListingView, error)
	GetAvailability(ctx context.Context, id listing.ID, from, to time.Time) (*AvailabilityView, error)
	GetBooking(ctx context.Context, id booking.ID) (*BookingView, error)
	BookingListing(ctx context.Context, id booking.ID) (listing.ID, error)
	ListReviews(ctx context.Context, id listing.ID, afterID int64, limit int) (*ReviewPage, error)
	ListEvents(ctx context.Context, afterSeq int64, limit int) (*EventPage, error)
	DueBookings(ctx context.Context, today time.Time, skip []listing.ID, limit int) ([]booking.ID, error)
	Treasury(ctx context.Context) (*TreasuryView, error)
	Balance(ctx context.Context, holder party.Identity) (*AccountView, error)
}

type ledgerQueriesImpl struct {
	store    LedgerReadStore
	maxLimit int
}

func NewLedgerQueries(store LedgerReadStore, maxLimit int) LedgerQueries {
	return &ledgerQueriesImpl{store: store, maxLimit: maxLimit}
}

func (q *ledgerQueriesImpl) GetListing(ctx context.Context, id listing.ID) (*ListingView, error) {
	l, err := q.store.Listing(ctx, id)
	if err != nil {
		return nil, translate(err, listing.ErrListingMissing, "listing %d", id)
	}
	return ToListingView(l), nil
}

func (q *ledgerQueriesImpl) GetAvailability(ctx context.Context, id listing.ID, from, to time.Time) (*AvailabilityView, error) {
	window, err := booking.NewStayRange(from, to)
	if err != nil {
		if errs.Is(err, booking.ErrInvalidStay) {
			return nil, ErrInvalidWindow
		}
		return nil, err
	}
	if _, err := q.store.Listing(ctx, id); err != nil {
		return nil, translate(err, listing.ErrListingMissing, "listing %d", id)
	}
	intervals, err := q.store.ActiveIntervals(ctx, id, window)
	if err != nil {
		return nil, err
	}
	view := &AvailabilityView{
		ListingID: id.Int64(),
		From:      window.CheckIn(),
		To:        window.CheckOut(),
		Available: len(intervals) == 0,
		Blocked:   make([]IntervalView, 0, len(intervals)),
	}
	for _, iv := range intervals {
		view.Blocked = append(view.Blocked, IntervalView{
			BookingID: iv.BookingID.Int64(),
			CheckIn:   iv.Stay.CheckIn(),
			CheckOut:  iv.Stay.CheckOut(),
		})
	}
	return view, nil
}

func (q *ledgerQueriesImpl) GetBooking(ctx context.Context, id booking.ID) (*BookingView, error) {
	b, h, err := q.store.Booking(ctx, id)
	if err != nil {
		return nil, translate(err, booking.ErrBookingMissing, "booking %d", id)
	}
	return ToBookingView(b, h), nil
}

func (q *ledgerQueriesImpl) BookingListing(ctx context.Context, id booking.ID) (listing.ID, error) {
	lid, err := q.store.BookingListing(ctx, id)
	if err != nil {
		return 0, translate(err, booking.ErrBookingMissing, "booking %d", id)
	}
	return lid, nil
}

func (q *ledgerQueriesImpl) ListReviews(ctx context.Context, id listing.ID, afterID int64, limit int) (*ReviewPage, error) {
	limit = ValidateLimit(limit, q.maxLimit)
	if _, err := q.store.Listing(ctx, id); err != nil {
		return nil, translate(err, listing.ErrListingMissing, "listing %d", id)
	}
	rows, err := q.store.Reviews(ctx, id, review.ID(afterID), limit)
	if err != nil {
		return nil, err
	}
	page := &ReviewPage{Items: make([]ReviewView, 0, len(rows))}
	for _, r := range rows {
		page.Items = append(page.Items, ToReviewView(r))
	}
	if n := len(rows); n > 0 {
		page.NextAfter = nextAfter(n, limit, rows[n-1].ID().Int64())
	}
	return page, nil
}

func (q *ledgerQueriesImpl) ListEvents(ctx context.Context, afterSeq int64, limit int) (*EventPage, error) {
	limit = ValidateLimit(limit, q.maxLimit)
	rows, err := q.store.Events(ctx, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	page := &EventPage{Items: make([]EventView, 0, len(rows))}
	for _, e := range rows {
		page.Items = append(page.Items, ToEventView(e))
	}
	if n := len(rows); n > 0 {
		page.NextAfter = nextAfter(n, limit, rows[n-1].Seq)
	}
	return page, nil
}

func (q *ledgerQueriesImpl) DueBookings(ctx context.Context, today time.Time, skip []listing.ID, limit int) ([]booking.ID, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return q.store.DueBookings(ctx, today, skip, limit)
}

func (q *ledgerQueriesImpl) Treasury(ctx context.Context) (*TreasuryView, error) {
	t, err := q.store.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return ToTreasuryView(t), nil
}

func (q *ledgerQueriesImpl) Balance(ctx context.Context, holder party.Identity) (*AccountView, error) {
	a, err := q.store.Account(ctx, holder)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &AccountView{Holder: holder.String()}, nil
		}
		return nil, err
	}
	return ToAccountView(a), nil
}

// translate turns a store miss into the domain's not-found sentinel and
// passes every other failure through.
func translate(err, missing error, format string, args ...any) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Wrapf(missing, format, args...)
	}
	return err
}
