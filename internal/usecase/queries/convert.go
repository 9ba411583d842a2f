package queries

import (
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/review"
)

func ToListingView(l *listing.Listing) *ListingView {
	meta := l.Metadata()
	return &ListingView{
		ID:                  l.ID().Int64(),
		Owner:               l.Owner().String(),
		PricePerNightMinor:  l.PricePerNight().Minor(),
		Name:                meta.Name(),
		Location:            meta.Location(),
		Description:         meta.Description(),
		ImageURI:            meta.ImageURI(),
		Active:              l.IsActive(),
		TotalBookings:       l.TotalBookings(),
		RatingSum:           l.RatingSum(),
		RatingCount:         l.RatingCount(),
		AverageRatingScaled: l.AverageRatingScaled(),
		CreatedAt:           l.CreatedAt(),
		UpdatedAt:           l.UpdatedAt(),
	}
}

// ToBookingView accepts a nil hold for bookings that never reached escrow.
func ToBookingView(b *booking.Booking, h *escrow.Hold) *BookingView {
	q := b.Quote()
	v := &BookingView{
		ID:                 b.ID().Int64(),
		ListingID:          b.ListingID().Int64(),
		Guest:              b.Guest().String(),
		CheckIn:            b.Stay().CheckIn(),
		CheckOut:           b.Stay().CheckOut(),
		Nights:             q.Nights(),
		Status:             b.Status().String(),
		GrossAmountMinor:   q.Gross().Minor(),
		FeeRateBasisPoints: q.FeeRate().Value(),
		FeeAmountMinor:     q.Fee().Minor(),
		NetToHostMinor:     q.NetToHost().Minor(),
		CreatedAt:          b.CreatedAt(),
		UpdatedAt:          b.UpdatedAt(),
	}
	if h != nil {
		v.EscrowHeldMinor = h.Held().Minor()
		v.EscrowState = string(h.State())
		v.RefundedMinor = h.Refunded().Minor()
	}
	return v
}

func ToReviewView(r *review.Review) ReviewView {
	return ReviewView{
		ID:        r.ID().Int64(),
		BookingID: r.BookingID().Int64(),
		ListingID: r.ListingID().Int64(),
		Reviewer:  r.Reviewer().String(),
		Rating:    r.Rating().Value(),
		Comment:   r.Comment().String(),
		CreatedAt: r.CreatedAt(),
	}
}

func ToEventView(e event.Event) EventView {
	return EventView{
		Seq:        e.Seq,
		ID:         e.ID,
		Kind:       string(e.Kind),
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID,
		Actor:      e.Actor,
		Timestamp:  e.Timestamp,
		Payload:    e.Payload,
	}
}

func ToTreasuryView(t escrow.Totals) *TreasuryView {
	return &TreasuryView{
		AcceptedMinor:     t.Accepted.Minor(),
		HostPayoutsMinor:  t.HostPayouts.Minor(),
		PlatformFeesMinor: t.PlatformFees.Minor(),
		RefundsMinor:      t.Refunds.Minor(),
		WithdrawalsMinor:  t.Withdrawals.Minor(),
		HeldMinor:         t.Held.Minor(),
		Balanced:          t.Balanced(),
	}
}

func ToAccountView(a *escrow.Account) *AccountView {
	v := &AccountView{Holder: a.Holder().String(), BalanceMinor: a.Balance().Minor()}
	if !a.UpdatedAt().IsZero() {
		at := a.UpdatedAt()
		v.UpdatedAt = &at
	}
	return v
}
