package commands

import (
	"context"
	"time"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/shared"
)

// reserve inserts stay into the listing's calendar. Intervals ending on or
// before today cannot conflict with a stay that starts today or later, so
// they are not loaded.
func reserve(ctx context.Context, tx shared.Tx, listingID listing.ID, bookingID booking.ID, stay booking.StayRange, today time.Time) error {
	cal, err := tx.Reservations().Calendar(ctx, listingID, today)
	if err != nil {
		return err
	}
	iv, err := cal.TryReserve(bookingID, stay)
	if err != nil {
		return err
	}
	if err := tx.Reservations().Insert(ctx, listingID, iv); err != nil {
		// The exclusion constraint caught a concurrent write the calendar missed.
		if infra.IsKind(err, infra.KindConflict) {
			return errs.Wrapf(availability.ErrOverlap, "listing %d %s", listingID, stay)
		}
		return err
	}
	return nil
}

// releaseStay frees the dates of a booking that is being cancelled.
func releaseStay(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
	cal, err := tx.Reservations().Calendar(ctx, b.ListingID(), b.Stay().CheckIn())
	if err != nil {
		return err
	}
	if !cal.Release(b.ID()) {
		return errs.Wrapf(ErrCouplingBroken, "booking %d holds no reservation", b.ID())
	}
	return tx.Reservations().Delete(ctx, b.ListingID(), b.ID())
}

// archiveStay keeps a completed stay's interval as history.
func archiveStay(ctx context.Context, tx shared.Tx, b *booking.Booking) error {
	cal, err := tx.Reservations().Calendar(ctx, b.ListingID(), b.Stay().CheckIn())
	if err != nil {
		return err
	}
	if !cal.Archive(b.ID()) {
		return errs.Wrapf(ErrCouplingBroken, "booking %d has no active reservation to archive", b.ID())
	}
	return tx.Reservations().Archive(ctx, b.ListingID(), b.ID())
}
