package shared

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
)

// UnitOfWork runs fn atomically. Everything fn writes through tx becomes
// visible together on commit, or not at all when fn returns an error.
// Implementations never retry fn.
type UnitOfWork interface {
	// Within: global scope for work that touches no existing listing
	// (creating listings, withdrawals).
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinListing: exclusive access to one listing and everything it owns
	// (bookings, reservations, holds, reviews) for the duration of fn.
	WithinListing(ctx context.Context, id listing.ID, fn func(ctx context.Context, tx Tx) error) error
	// WithinBooking resolves the booking's listing and behaves like WithinListing.
	WithinBooking(ctx context.Context, id booking.ID, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Listings() ListingRepository
	Bookings() BookingRepository
	Reservations() ReservationRepository
	Escrow() EscrowRepository
	Accounts() AccountRepository
	Reviews() ReviewRepository
	Events() EventRepository
	Idempotency() IdempotencyRepository
}

type ListingRepository interface {
	NextID(ctx context.Context) (listing.ID, error)
	Create(ctx context.Context, l *listing.Listing) error
	Get(ctx context.Context, id listing.ID) (*listing.Listing, error)
	Update(ctx context.Context, l *listing.Listing) error
}

type BookingRepository interface {
	NextID(ctx context.Context) (booking.ID, error)
	Create(ctx context.Context, b *booking.Booking) error
	Get(ctx context.Context, id booking.ID) (*booking.Booking, error)
	Update(ctx context.Context, b *booking.Booking) error
}

type ReservationRepository interface {
	// Calendar loads the listing's intervals that end after since.
	Calendar(ctx context.Context, id listing.ID, since time.Time) (*availability.Calendar, error)
	Insert(ctx context.Context, id listing.ID, iv availability.Interval) error
	Delete(ctx context.Context, id listing.ID, bookingID booking.ID) error
	Archive(ctx context.Context, id listing.ID, bookingID booking.ID) error
}

type EscrowRepository interface {
	CreateHold(ctx context.Context, h *escrow.Hold) error
	GetHold(ctx context.Context, bookingID booking.ID) (*escrow.Hold, error)
	UpdateHold(ctx context.Context, h *escrow.Hold) error
	AppendEntries(ctx context.Context, entries ...escrow.Entry) error
}

type AccountRepository interface {
	// Get returns an empty account for unknown holders.
	Get(ctx context.Context, holder party.Identity) (*escrow.Account, error)
	Save(ctx context.Context, a *escrow.Account) error
	// Credit adds to balances without reading them first.
	Credit(ctx context.Context, credits ...escrow.Credit) error
}

type ReviewRepository interface {
	NextID(ctx context.Context) (review.ID, error)
	Create(ctx context.Context, r *review.Review) error
	ExistsForBooking(ctx context.Context, bookingID booking.ID) (bool, error)
}

type EventRepository interface {
	// Append stages events; they receive their sequence number and are
	// published to subscribers only after commit.
	Append(ctx context.Context, events ...event.Event) error
}

type IdempotencyRepository interface {
	// Get returns nil without error when the key is unused.
	Get(ctx context.Context, key string, caller party.Identity) (*IdempotencyRecord, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

// EventPublisher receives committed events in commit order.
type EventPublisher interface {
	Publish(events []event.Event)
}
