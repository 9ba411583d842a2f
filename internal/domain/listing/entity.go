package listing

import (
	"time"

	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
)

// RatingScale is the fixed decimal scale of AverageRatingScaled: 467 means 4.67.
const RatingScale = 100

var (
	ErrInvalidPrice   = errs.NewMarked("price per night must be positive", errs.ErrInvalidInput)
	ErrInvalidOwner   = errs.NewMarked("listing owner is required", errs.ErrInvalidInput)
	ErrNotOwner       = errs.NewMarked("only the listing owner may do this", errs.ErrNotAuthorized)
	ErrInactive       = errs.NewMarked("listing is not accepting bookings", errs.ErrInvalidInput)
	ErrInvalidRating  = errs.NewMarked("listing rating must be between 1 and 5", errs.ErrInvalidInput)
	ErrListingMissing = errs.NewMarked("listing not found", errs.ErrNotFound)
)

type Listing struct {
	id            ID
	owner         party.Identity
	metadata      Metadata
	pricePerNight money.Amount
	active        bool
	totalBookings int64
	ratingSum     int64
	ratingCount   int64
	createdAt     time.Time
	updatedAt     time.Time
}

func NewListing(id ID, owner party.Identity, price money.Amount, metadata Metadata, now time.Time) (*Listing, error) {
	if owner.IsZero() {
		return nil, ErrInvalidOwner
	}
	if price.IsZero() {
		return nil, ErrInvalidPrice
	}
	return &Listing{
		id:            id,
		owner:         owner,
		metadata:      metadata,
		pricePerNight: price,
		active:        true,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructListing(
	id ID,
	owner party.Identity,
	metadata Metadata,
	price money.Amount,
	active bool,
	totalBookings, ratingSum, ratingCount int64,
	createdAt, updatedAt time.Time,
) *Listing {
	return &Listing{
		id:            id,
		owner:         owner,
		metadata:      metadata,
		pricePerNight: price,
		active:        active,
		totalBookings: totalBookings,
		ratingSum:     ratingSum,
		ratingCount:   ratingCount,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Deactivate reports whether the listing changed. Existing bookings are untouched.
func (l *Listing) Deactivate(caller party.Identity, now time.Time) (bool, error) {
	if caller != l.owner {
		return false, ErrNotOwner
	}
	if !l.active {
		return false, nil
	}
	l.active = false
	l.updatedAt = now
	return true, nil
}

func (l *Listing) UpdatePrice(caller party.Identity, price money.Amount, now time.Time) error {
	if caller != l.owner {
		return ErrNotOwner
	}
	if price.IsZero() {
		return ErrInvalidPrice
	}
	l.pricePerNight = price
	l.updatedAt = now
	return nil
}

func (l *Listing) EnsureBookable() error {
	if !l.active {
		return ErrInactive
	}
	return nil
}

func (l *Listing) RecordBooking(now time.Time) {
	l.totalBookings++
	l.updatedAt = now
}

func (l *Listing) RecordRating(rating int, now time.Time) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	l.ratingSum += int64(rating)
	l.ratingCount++
	l.updatedAt = now
	return nil
}

func (l *Listing) AverageRatingScaled() int64 {
	if l.ratingCount == 0 {
		return 0
	}
	return l.ratingSum * RatingScale / l.ratingCount
}

func (l *Listing) IsOwner(id party.Identity) bool { return l.owner == id }

func (l *Listing) ID() ID                      { return l.id }
func (l *Listing) Owner() party.Identity       { return l.owner }
func (l *Listing) Metadata() Metadata          { return l.metadata }
func (l *Listing) PricePerNight() money.Amount { return l.pricePerNight }
func (l *Listing) IsActive() bool              { return l.active }
func (l *Listing) TotalBookings() int64        { return l.totalBookings }
func (l *Listing) RatingSum() int64            { return l.ratingSum }
func (l *Listing) RatingCount() int64          { return l.ratingCount }
func (l *Listing) CreatedAt() time.Time        { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time        { return l.updatedAt }
