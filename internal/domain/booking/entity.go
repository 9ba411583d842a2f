package booking

import (
	"time"

	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
)

var (
	ErrCheckInPast     = errs.NewMarked("check-in must not be in the past", errs.ErrInvalidInput)
	ErrNotParticipant  = errs.NewMarked("only the guest or the host may cancel", errs.ErrNotAuthorized)
	ErrTooLate         = errs.NewMarked("check-in has passed", errs.ErrTooLateToCancel)
	ErrNotDue          = errs.NewMarked("check-out date has not been reached", errs.ErrNotYetEligible)
	ErrAlreadyCanceled = errs.NewMarked("booking is already cancelled", errs.ErrAlreadySettled)
	ErrNotCompletable  = errs.NewMarked("booking cannot be completed from its current status", errs.ErrNotEligible)
	ErrIllegalState    = errs.NewMarked("illegal booking status transition", errs.ErrInvariantViolation)
	ErrBookingMissing  = errs.NewMarked("booking not found", errs.ErrNotFound)
)

type Booking struct {
	id        ID
	listingID listing.ID
	guest     party.Identity
	stay      StayRange
	quote     Quote
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking starts in Requested; the caller confirms it in the same unit of
// work once the dates are reserved and the funds are held.
func NewBooking(id ID, listingID listing.ID, guest party.Identity, stay StayRange, quote Quote, today, now time.Time) (*Booking, error) {
	if stay.CheckIn().Before(today) {
		return nil, ErrCheckInPast
	}
	return &Booking{
		id:        id,
		listingID: listingID,
		guest:     guest,
		stay:      stay,
		quote:     quote,
		status:    StatusRequested,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructBooking(
	id ID,
	listingID listing.ID,
	guest party.Identity,
	stay StayRange,
	quote Quote,
	status Status,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		listingID: listingID,
		guest:     guest,
		stay:      stay,
		quote:     quote,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (b *Booking) transition(next Status, now time.Time) error {
	if !b.status.CanTransitionTo(next) {
		return errs.Wrapf(ErrIllegalState, "%s -> %s", b.status, next)
	}
	b.status = next
	b.updatedAt = now
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	return b.transition(StatusConfirmed, now)
}

// Complete reports false without error when the booking is already Completed.
func (b *Booking) Complete(today, now time.Time) (bool, error) {
	switch b.status {
	case StatusCompleted:
		return false, nil
	case StatusConfirmed:
	default:
		return false, ErrNotCompletable
	}
	if today.Before(b.stay.CheckOut()) {
		return false, ErrNotDue
	}
	return true, b.transition(StatusCompleted, now)
}

// Cancel is allowed for the guest and the host while today is before check-in.
func (b *Booking) Cancel(caller, host party.Identity, today, now time.Time) error {
	if caller != b.guest && caller != host {
		return ErrNotParticipant
	}
	switch b.status {
	case StatusCancelled:
		return ErrAlreadyCanceled
	case StatusCompleted:
		return ErrTooLate
	}
	if !today.Before(b.stay.CheckIn()) {
		return ErrTooLate
	}
	return b.transition(StatusCancelled, now)
}

func (b *Booking) ID() ID                { return b.id }
func (b *Booking) ListingID() listing.ID { return b.listingID }
func (b *Booking) Guest() party.Identity { return b.guest }
func (b *Booking) Stay() StayRange       { return b.stay }
func (b *Booking) Quote() Quote          { return b.quote }
func (b *Booking) Status() Status        { return b.status }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }
