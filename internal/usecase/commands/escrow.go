package commands

import (
	"context"
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/shared"
)

func lockFunds(ctx context.Context, tx shared.Tx, h *escrow.Hold) error {
	if err := tx.Escrow().CreateHold(ctx, h); err != nil {
		return err
	}
	return tx.Escrow().AppendEntries(ctx, escrow.LockEntries(h)...)
}

func releaseFunds(ctx context.Context, tx shared.Tx, h *escrow.Hold, b *booking.Booking, platform party.Identity, today, now time.Time) (escrow.Settlement, error) {
	s, err := h.Release(today, b.Stay().CheckOut(), now)
	if err != nil {
		return escrow.Settlement{}, err
	}
	if err := settle(ctx, tx, h, escrow.ReleaseEntries(h, s, platform, now)); err != nil {
		return escrow.Settlement{}, err
	}
	return s, nil
}

func refundFunds(ctx context.Context, tx shared.Tx, h *escrow.Hold, b *booking.Booking, today, now time.Time) (money.Amount, error) {
	amount, err := h.Refund(today, b.Stay().CheckIn(), now)
	if err != nil {
		return money.Zero(), err
	}
	if err := settle(ctx, tx, h, escrow.RefundEntries(h, amount, now)); err != nil {
		return money.Zero(), err
	}
	return amount, nil
}

func settle(ctx context.Context, tx shared.Tx, h *escrow.Hold, entries []escrow.Entry) error {
	if err := tx.Escrow().UpdateHold(ctx, h); err != nil {
		return err
	}
	if err := tx.Escrow().AppendEntries(ctx, entries...); err != nil {
		return err
	}
	return tx.Accounts().Credit(ctx, escrow.CreditsFor(entries)...)
}

// checkCoupling verifies that escrow holds money exactly while the booking
// is Confirmed, and that the hold itself balances.
func checkCoupling(b *booking.Booking, h *escrow.Hold) error {
	if err := h.CheckBalance(); err != nil {
		return err
	}
	if !h.Gross().Equal(b.Quote().Gross()) {
		return errs.Wrapf(ErrCouplingBroken, "booking %d quotes %s, escrow took %s", b.ID(), b.Quote().Gross(), h.Gross())
	}
	want := map[booking.Status]escrow.State{
		booking.StatusConfirmed: escrow.StateHeld,
		booking.StatusCompleted: escrow.StateReleased,
		booking.StatusCancelled: escrow.StateRefunded,
	}[b.Status()]
	if h.State() != want {
		return errs.Wrapf(ErrCouplingBroken, "booking %d is %s with escrow %s", b.ID(), b.Status(), h.State())
	}
	return nil
}
