package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/shared"
)

type BookInput struct {
	ListingID    listing.ID
	Guest        party.Identity
	CheckIn      time.Time
	CheckOut     time.Time
	PaymentMinor int64
	// IdempotencyKey is optional. A replay with the same request returns the
	// original booking.
	IdempotencyKey string
}

type BookingCommands interface {
	Book(ctx context.Context, in BookInput) (*BookingResult, error)
	Cancel(ctx context.Context, id booking.ID, caller party.Identity) (*BookingResult, error)
	// CompleteIfDue is idempotent: an already Completed booking returns its
	// snapshot without change.
	CompleteIfDue(ctx context.Context, id booking.ID, actor party.Identity) (*BookingResult, error)
}

type bookingUseCaseImpl struct {
	base
}

func NewBookingUseCase(uow shared.UnitOfWork, clk clock.Clock, settings Settings) BookingCommands {
	return &bookingUseCaseImpl{base{uow: uow, clock: clk, settings: settings}}
}

func (uc *bookingUseCaseImpl) Book(ctx context.Context, in BookInput) (*BookingResult, error) {
	stay, err := booking.NewStayRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	payment, err := money.New(in.PaymentMinor)
	if err != nil {
		return nil, err
	}
	requestHash := calculateRequestHash(in.ListingID, stay, payment)

	var result *BookingResult
	err = uc.uow.WithinListing(ctx, in.ListingID, func(ctx context.Context, tx shared.Tx) error {
		if in.IdempotencyKey != "" {
			replay, err := uc.replay(ctx, tx, in, requestHash)
			if err != nil || replay != nil {
				result = replay
				return err
			}
		}

		now, today := uc.now()
		l, err := loadListing(ctx, tx, in.ListingID)
		if err != nil {
			return err
		}
		if err := l.EnsureBookable(); err != nil {
			return err
		}
		quote, err := booking.NewQuote(stay, l.PricePerNight(), uc.settings.FeeRate)
		if err != nil {
			return err
		}
		if !payment.Equal(quote.Gross()) {
			return errs.Wrapf(escrow.ErrPaymentMismatch, "paid %s, stay costs %s", payment, quote.Gross())
		}

		id, err := tx.Bookings().NextID(ctx)
		if err != nil {
			return err
		}
		b, err := booking.NewBooking(id, l.ID(), in.Guest, stay, quote, today, now)
		if err != nil {
			return err
		}
		h, err := escrow.Lock(id, in.Guest, l.Owner(), quote.Gross(), payment, quote.FeeRate(), now)
		if err != nil {
			return err
		}
		if err := b.Confirm(now); err != nil {
			return err
		}
		l.RecordBooking(now)

		// Row order follows the foreign keys.
		if err := tx.Bookings().Create(ctx, b); err != nil {
			return err
		}
		if err := reserve(ctx, tx, l.ID(), id, stay, today); err != nil {
			return err
		}
		if err := lockFunds(ctx, tx, h); err != nil {
			return err
		}
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}
		if in.IdempotencyKey != "" {
			if err := uc.remember(ctx, tx, in, requestHash, id, now); err != nil {
				return err
			}
		}
		if err := checkCoupling(b, h); err != nil {
			return err
		}

		evs := newEvents(in.Guest, now)
		evs.add(event.KindBookingConfirmed, event.EntityBooking, id.String(), bookingConfirmedPayload{
			ListingID:          l.ID().Int64(),
			Guest:              in.Guest.String(),
			CheckIn:            stay.CheckIn().Format(booking.DateLayout),
			CheckOut:           stay.CheckOut().Format(booking.DateLayout),
			GrossMinor:         quote.Gross().Minor(),
			FeeMinor:           quote.Fee().Minor(),
			FeeRateBasisPoints: quote.FeeRate().Value(),
		})
		evs.add(event.KindEscrowLocked, event.EntityBooking, id.String(), escrowLockedPayload{
			BookingID:   id.Int64(),
			AmountMinor: h.Held().Minor(),
		})
		if err := evs.append(ctx, tx); err != nil {
			return err
		}

		result = &BookingResult{Booking: b, Hold: h}
		return nil
	})
	if err != nil {
		// A concurrent request claimed the key first; stores report this
		// either on insert or at commit.
		if in.IdempotencyKey != "" && infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Wrap(ErrIdempotencyKeyReused, "concurrent request")
		}
		return nil, err
	}
	return result, nil
}

// replay returns the original booking for a known key, nil for a fresh key.
func (uc *bookingUseCaseImpl) replay(ctx context.Context, tx shared.Tx, in BookInput, requestHash string) (*BookingResult, error) {
	rec, err := tx.Idempotency().Get(ctx, in.IdempotencyKey, in.Guest)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	if rec.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReused
	}
	b, err := loadBooking(ctx, tx, rec.BookingID)
	if err != nil {
		return nil, err
	}
	h, err := loadHold(ctx, tx, rec.BookingID)
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: b, Hold: h, Replayed: true}, nil
}

func (uc *bookingUseCaseImpl) remember(ctx context.Context, tx shared.Tx, in BookInput, requestHash string, id booking.ID, now time.Time) error {
	return tx.Idempotency().Save(ctx, shared.IdempotencyRecord{
		Key:         in.IdempotencyKey,
		Caller:      in.Guest,
		RequestHash: requestHash,
		BookingID:   id,
		CreatedAt:   now,
	})
}

func (uc *bookingUseCaseImpl) Cancel(ctx context.Context, id booking.ID, caller party.Identity) (*BookingResult, error) {
	var result *BookingResult
	err := uc.uow.WithinBooking(ctx, id, func(ctx context.Context, tx shared.Tx) error {
		now, today := uc.now()
		b, err := loadBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		l, err := loadListing(ctx, tx, b.ListingID())
		if err != nil {
			return err
		}
		if err := b.Cancel(caller, l.Owner(), today, now); err != nil {
			return err
		}
		h, err := loadHold(ctx, tx, id)
		if err != nil {
			return err
		}
		amount, err := refundFunds(ctx, tx, h, b, today, now)
		if err != nil {
			return err
		}
		if err := releaseStay(ctx, tx, b); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		if err := checkCoupling(b, h); err != nil {
			return err
		}

		evs := newEvents(caller, now)
		evs.add(event.KindBookingCancelled, event.EntityBooking, id.String(), bookingClosedPayload{
			ListingID: b.ListingID().Int64(),
		})
		evs.add(event.KindEscrowRefunded, event.EntityBooking, id.String(), escrowRefundedPayload{
			BookingID:   id.Int64(),
			Guest:       b.Guest().String(),
			AmountMinor: amount.Minor(),
		})
		if err := evs.append(ctx, tx); err != nil {
			return err
		}

		result = &BookingResult{Booking: b, Hold: h}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *bookingUseCaseImpl) CompleteIfDue(ctx context.Context, id booking.ID, actor party.Identity) (*BookingResult, error) {
	var result *BookingResult
	err := uc.uow.WithinBooking(ctx, id, func(ctx context.Context, tx shared.Tx) error {
		now, today := uc.now()
		b, err := loadBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		h, err := loadHold(ctx, tx, id)
		if err != nil {
			return err
		}
		changed, err := b.Complete(today, now)
		if err != nil {
			return err
		}
		result = &BookingResult{Booking: b, Hold: h}
		if !changed {
			return nil
		}

		s, err := releaseFunds(ctx, tx, h, b, uc.settings.Platform, today, now)
		if err != nil {
			return err
		}
		if err := archiveStay(ctx, tx, b); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, b); err != nil {
			return err
		}
		if err := checkCoupling(b, h); err != nil {
			return err
		}

		evs := newEvents(actor, now)
		evs.add(event.KindBookingCompleted, event.EntityBooking, id.String(), bookingClosedPayload{
			ListingID: b.ListingID().Int64(),
		})
		evs.add(event.KindEscrowReleased, event.EntityBooking, id.String(), escrowReleasedPayload{
			BookingID: id.Int64(),
			Host:      h.Payee().String(),
			HostMinor: s.Host.Minor(),
			Platform:  uc.settings.Platform.String(),
			FeeMinor:  s.Fee.Minor(),
		})
		return evs.append(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func calculateRequestHash(listingID listing.ID, stay booking.StayRange, payment money.Amount) string {
	data := fmt.Sprintf("%d|%s|%s", listingID, stay, payment)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
