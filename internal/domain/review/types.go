package review

import "stay-ledger/internal/pkg/errs"

var (
	ErrInvalidRating  = errs.NewMarked("rating must be between 1 and 5", errs.ErrInvalidInput)
	ErrEmptyComment   = errs.NewMarked("comment cannot be empty", errs.ErrInvalidInput)
	ErrCommentTooLong = errs.NewMarked("comment exceeds maximum length", errs.ErrInvalidInput)

	ErrBookingNotCompleted = errs.NewMarked("booking is not completed", errs.ErrNotEligible)
	ErrNotGuest            = errs.NewMarked("only the guest of the booking may review it", errs.ErrNotEligible)
	ErrReviewAlreadyExists = errs.NewMarked("review already exists for this booking", errs.ErrNotEligible)
)
