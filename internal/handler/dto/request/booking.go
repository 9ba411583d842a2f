package request

import (
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/usecase/commands"
)

// CreateBookingRequest carries dates as YYYY-MM-DD in UTC.
type CreateBookingRequest struct {
	ListingID    int64  `json:"listing_id" binding:"required"`
	CheckIn      string `json:"check_in" binding:"required"`
	CheckOut     string `json:"check_out" binding:"required"`
	PaymentMinor int64  `json:"payment_minor"`
}

func (r *CreateBookingRequest) ToInput(guest party.Identity, idempotencyKey string) (commands.BookInput, error) {
	stay, err := booking.ParseStayRange(r.CheckIn, r.CheckOut)
	if err != nil {
		return commands.BookInput{}, err
	}
	return commands.BookInput{
		ListingID:      listing.ID(r.ListingID),
		Guest:          guest,
		CheckIn:        stay.CheckIn(),
		CheckOut:       stay.CheckOut(),
		PaymentMinor:   r.PaymentMinor,
		IdempotencyKey: idempotencyKey,
	}, nil
}
