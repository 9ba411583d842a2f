//go:build unit || e2e

package builder

import (
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	domreview "stay-ledger/internal/domain/review"
	reqdto "stay-ledger/internal/handler/dto/request"
)

type ReviewBuilder struct {
	ID        domreview.ID
	BookingID booking.ID
	ListingID listing.ID
	Reviewer  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func NewReviewBuilder() *ReviewBuilder {
	return &ReviewBuilder{
		ID:        1,
		BookingID: 1,
		ListingID: 1,
		Reviewer:  "guest-1",
		Rating:    5,
		Comment:   "Excellent stay!",
		CreatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *ReviewBuilder) With(mutate func(*ReviewBuilder)) *ReviewBuilder {
	mutate(r)
	return r
}

// Build methods
func (r *ReviewBuilder) BuildDomain() (*domreview.Review, error) {
	return domreview.NewReview(r.ID, r.BookingID, r.ListingID, party.MustIdentity(r.Reviewer), r.Rating, r.Comment, r.CreatedAt)
}

func (r *ReviewBuilder) BuildSubmitRequestDTO() reqdto.SubmitReviewRequest {
	return reqdto.SubmitReviewRequest{
		Rating:  r.Rating,
		Comment: r.Comment,
	}
}
