package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/pkg/errs"
)

// ErrCorruptRow marks stored rows that no longer satisfy the domain rules.
var ErrCorruptRow = errs.NewMarked("stored row violates domain rules", errs.ErrInvariantViolation)

const (
	listingColumns = `id, owner, price_per_night, name, location, description, image_uri,
		active, total_bookings, rating_sum, rating_count, created_at, updated_at`
	bookingColumns = `id, listing_id, guest, check_in, check_out, nights, gross_amount,
		fee_amount, net_to_host, fee_rate_bps, status, created_at, updated_at`
	holdColumns = `booking_id, guest, payee, gross_amount, held_amount, fee_rate_bps,
		fee_amount, host_amount, refunded, state, locked_at, settled_at`
	reviewColumns = `id, booking_id, listing_id, reviewer, rating, comment, created_at`
	eventColumns  = `seq, id::text, kind, entity_type, entity_id, actor, ts, payload`
)

// decoder collects the first conversion error while a row is rebuilt.
type decoder struct{ err error }

func (d *decoder) amount(v int64) money.Amount {
	a, err := money.New(v)
	if err != nil && d.err == nil {
		d.err = errs.Wrapf(ErrCorruptRow, "amount %d: %v", v, err)
	}
	return a
}

func (d *decoder) rate(v int64) money.BasisPoints {
	r, err := money.NewBasisPoints(v)
	if err != nil && d.err == nil {
		d.err = errs.Wrapf(ErrCorruptRow, "fee rate %d: %v", v, err)
	}
	return r
}

func (d *decoder) identity(s string) party.Identity {
	id, err := party.NewIdentity(s)
	if err != nil && d.err == nil {
		d.err = errs.Wrapf(ErrCorruptRow, "identity %q: %v", s, err)
	}
	return id
}

func scanListing(row pgx.Row) (*listing.Listing, error) {
	var (
		id, price, total, ratingSum, ratingCount int64
		owner, name, location, desc, image       string
		active                                   bool
		createdAt, updatedAt                     time.Time
	)
	if err := row.Scan(&id, &owner, &price, &name, &location, &desc, &image,
		&active, &total, &ratingSum, &ratingCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var d decoder
	meta, err := listing.NewMetadata(name, location, desc, image)
	if err != nil {
		return nil, errs.Wrapf(ErrCorruptRow, "listing %d metadata: %v", id, err)
	}
	l := listing.ReconstructListing(listing.ID(id), d.identity(owner), meta, d.amount(price),
		active, total, ratingSum, ratingCount, createdAt.UTC(), updatedAt.UTC())
	return l, d.err
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, listingID, nights, gross, fee, net, rate int64
		guest, status                                string
		checkIn, checkOut, createdAt, updatedAt      time.Time
	)
	if err := row.Scan(&id, &listingID, &guest, &checkIn, &checkOut, &nights, &gross,
		&fee, &net, &rate, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var d decoder
	quote := booking.ReconstructQuote(nights, d.amount(gross), d.amount(fee), d.amount(net), d.rate(rate))
	st := booking.Status(status)
	if !st.IsValid() && d.err == nil {
		d.err = errs.Wrapf(ErrCorruptRow, "booking %d status %q", id, status)
	}
	b := booking.ReconstructBooking(booking.ID(id), listing.ID(listingID), d.identity(guest),
		booking.ReconstructStayRange(checkIn.UTC(), checkOut.UTC()), quote, st,
		createdAt.UTC(), updatedAt.UTC())
	return b, d.err
}

func scanHold(row pgx.Row) (*escrow.Hold, error) {
	var (
		bookingID, gross, held, rate, fee, host, refunded int64
		guest, payee, state                               string
		lockedAt                                          time.Time
		settledAt                                         *time.Time
	)
	if err := row.Scan(&bookingID, &guest, &payee, &gross, &held, &rate,
		&fee, &host, &refunded, &state, &lockedAt, &settledAt); err != nil {
		return nil, err
	}
	if settledAt != nil {
		at := settledAt.UTC()
		settledAt = &at
	}
	var d decoder
	h := escrow.ReconstructHold(booking.ID(bookingID), d.identity(guest), d.identity(payee),
		d.amount(gross), d.amount(held), d.rate(rate), d.amount(fee), d.amount(host), d.amount(refunded),
		escrow.State(state), lockedAt.UTC(), settledAt)
	return h, d.err
}

func scanReview(row pgx.Row) (*review.Review, error) {
	var (
		id, bookingID, listingID int64
		reviewer, comment        string
		rating                   int
		createdAt                time.Time
	)
	if err := row.Scan(&id, &bookingID, &listingID, &reviewer, &rating, &comment, &createdAt); err != nil {
		return nil, err
	}
	r, err := review.NewRating(rating)
	if err != nil {
		return nil, errs.Wrapf(ErrCorruptRow, "review %d rating: %v", id, err)
	}
	c, err := review.NewComment(comment)
	if err != nil {
		return nil, errs.Wrapf(ErrCorruptRow, "review %d comment: %v", id, err)
	}
	var d decoder
	rv := review.ReconstructReview(review.ID(id), booking.ID(bookingID), listing.ID(listingID),
		d.identity(reviewer), r, c, createdAt.UTC())
	return rv, d.err
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var (
		seq                                 int64
		id, kind, entityType, entity, actor string
		ts                                  time.Time
		payload                             []byte
	)
	if err := row.Scan(&seq, &id, &kind, &entityType, &entity, &actor, &ts, &payload); err != nil {
		return event.Event{}, err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return event.Event{}, errs.Wrapf(ErrCorruptRow, "event %d id: %v", seq, err)
	}
	return event.Event{
		Seq:        seq,
		ID:         uid,
		Kind:       event.Kind(kind),
		EntityType: event.EntityType(entityType),
		EntityID:   entity,
		Actor:      actor,
		Timestamp:  ts.UTC(),
		Payload:    payload,
	}, nil
}

func scanInterval(row pgx.Row) (availability.Interval, error) {
	var (
		bookingID         int64
		checkIn, checkOut time.Time
		historical        bool
	)
	if err := row.Scan(&bookingID, &checkIn, &checkOut, &historical); err != nil {
		return availability.Interval{}, err
	}
	return availability.Interval{
		BookingID:  booking.ID(bookingID),
		Stay:       booking.ReconstructStayRange(checkIn.UTC(), checkOut.UTC()),
		Historical: historical,
	}, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
