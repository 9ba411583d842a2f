//go:build unit || e2e

package builder

import (
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	reqdto "stay-ledger/internal/handler/dto/request"
)

type BookingBuilder struct {
	ID            booking.ID
	ListingID     listing.ID
	Guest         string
	CheckIn       time.Time
	CheckOut      time.Time
	PricePerNight int64
	FeeRate       int64
	Today         time.Time
	Now           time.Time
}

func NewBookingBuilder() *BookingBuilder {
	today := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:            1,
		ListingID:     1,
		Guest:         "guest-1",
		CheckIn:       today.AddDate(0, 0, 10),
		CheckOut:      today.AddDate(0, 0, 13),
		PricePerNight: 333,
		FeeRate:       250,
		Today:         today,
		Now:           today.Add(9 * time.Hour),
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Nights sets check-out relative to check-in.
func (b *BookingBuilder) Nights(n int) *BookingBuilder {
	b.CheckOut = b.CheckIn.AddDate(0, 0, n)
	return b
}

// Build methods
func (b *BookingBuilder) BuildStay() (booking.StayRange, error) {
	return booking.NewStayRange(b.CheckIn, b.CheckOut)
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	guest, err := party.NewIdentity(b.Guest)
	if err != nil {
		return nil, err
	}
	stay, err := b.BuildStay()
	if err != nil {
		return nil, err
	}
	price, err := money.New(b.PricePerNight)
	if err != nil {
		return nil, err
	}
	rate, err := money.NewBasisPoints(b.FeeRate)
	if err != nil {
		return nil, err
	}
	quote, err := booking.NewQuote(stay, price, rate)
	if err != nil {
		return nil, err
	}
	return booking.NewBooking(b.ID, b.ListingID, guest, stay, quote, b.Today, b.Now)
}

// BuildConfirmed panics on invalid input; use it for fixtures only.
func (b *BookingBuilder) BuildConfirmed() *booking.Booking {
	bk, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	if err := bk.Confirm(b.Now); err != nil {
		panic(err)
	}
	return bk
}

func (b *BookingBuilder) BuildRequestDTO() reqdto.CreateBookingRequest {
	nights := int64(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
	return reqdto.CreateBookingRequest{
		ListingID:    b.ListingID.Int64(),
		CheckIn:      b.CheckIn.Format(booking.DateLayout),
		CheckOut:     b.CheckOut.Format(booking.DateLayout),
		PaymentMinor: nights * b.PricePerNight,
	}
}
