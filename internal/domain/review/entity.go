package review

import (
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
)

// Review is immutable once created.
type Review struct {
	id        ID
	bookingID booking.ID
	listingID listing.ID
	reviewer  party.Identity
	rating    Rating
	comment   Comment
	createdAt time.Time
}

func NewReview(id ID, bookingID booking.ID, listingID listing.ID, reviewer party.Identity, ratingValue int, commentText string, now time.Time) (*Review, error) {
	rating, err := NewRating(ratingValue)
	if err != nil {
		return nil, err
	}

	comment, err := NewComment(commentText)
	if err != nil {
		return nil, err
	}

	return &Review{
		id:        id,
		bookingID: bookingID,
		listingID: listingID,
		reviewer:  reviewer,
		rating:    rating,
		comment:   comment,
		createdAt: now,
	}, nil
}

func ReconstructReview(id ID, bookingID booking.ID, listingID listing.ID, reviewer party.Identity, rating Rating, comment Comment, createdAt time.Time) *Review {
	return &Review{
		id:        id,
		bookingID: bookingID,
		listingID: listingID,
		reviewer:  reviewer,
		rating:    rating,
		comment:   comment,
		createdAt: createdAt,
	}
}

func (r *Review) ID() ID                   { return r.id }
func (r *Review) BookingID() booking.ID    { return r.bookingID }
func (r *Review) ListingID() listing.ID    { return r.listingID }
func (r *Review) Reviewer() party.Identity { return r.reviewer }
func (r *Review) Rating() Rating           { return r.rating }
func (r *Review) Comment() Comment         { return r.comment }
func (r *Review) CreatedAt() time.Time     { return r.createdAt }
