package review

import (
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/party"
)

// CheckEligibility decides whether reviewer may review b.
func CheckEligibility(b *booking.Booking, reviewer party.Identity, alreadyReviewed bool) error {
	if b.Status() != booking.StatusCompleted {
		return ErrBookingNotCompleted
	}
	if b.Guest() != reviewer {
		return ErrNotGuest
	}
	if alreadyReviewed {
		return ErrReviewAlreadyExists
	}
	return nil
}
