package escrow

import (
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
)

type EntryKind string

const (
	EntryPaymentAccepted EntryKind = "payment_accepted"
	EntryHostPayout      EntryKind = "host_payout"
	EntryPlatformFee     EntryKind = "platform_fee"
	EntryRefund          EntryKind = "refund"
	EntryWithdrawal      EntryKind = "withdrawal"
)

var ErrUnknownEntry = errs.NewMarked("unknown journal entry kind", errs.ErrInvariantViolation)

// Entry is one append-only money movement. BookingID is zero for withdrawals.
type Entry struct {
	ID        int64
	BookingID booking.ID
	Kind      EntryKind
	Account   party.Identity
	Amount    money.Amount
	At        time.Time
}

func LockEntries(h *Hold) []Entry {
	return []Entry{{
		BookingID: h.bookingID,
		Kind:      EntryPaymentAccepted,
		Account:   h.guest,
		Amount:    h.gross,
		At:        h.lockedAt,
	}}
}

// ReleaseEntries skips the fee line when the fee rounds to zero.
func ReleaseEntries(h *Hold, s Settlement, platform party.Identity, at time.Time) []Entry {
	entries := []Entry{{
		BookingID: h.bookingID,
		Kind:      EntryHostPayout,
		Account:   h.payee,
		Amount:    s.Host,
		At:        at,
	}}
	if !s.Fee.IsZero() {
		entries = append(entries, Entry{
			BookingID: h.bookingID,
			Kind:      EntryPlatformFee,
			Account:   platform,
			Amount:    s.Fee,
			At:        at,
		})
	}
	return entries
}

func RefundEntries(h *Hold, amount money.Amount, at time.Time) []Entry {
	return []Entry{{
		BookingID: h.bookingID,
		Kind:      EntryRefund,
		Account:   h.guest,
		Amount:    amount,
		At:        at,
	}}
}

// Totals aggregates the journal. Held is taken from the live holds, not
// derived from the journal, so Balanced is a real cross-check.
type Totals struct {
	Accepted     money.Amount
	HostPayouts  money.Amount
	PlatformFees money.Amount
	Refunds      money.Amount
	Withdrawals  money.Amount
	Held         money.Amount
}

func (t *Totals) Apply(e Entry) error {
	var target *money.Amount
	switch e.Kind {
	case EntryPaymentAccepted:
		target = &t.Accepted
	case EntryHostPayout:
		target = &t.HostPayouts
	case EntryPlatformFee:
		target = &t.PlatformFees
	case EntryRefund:
		target = &t.Refunds
	case EntryWithdrawal:
		target = &t.Withdrawals
	default:
		return errs.Wrapf(ErrUnknownEntry, "%q", e.Kind)
	}
	sum, err := target.Add(e.Amount)
	if err != nil {
		return err
	}
	*target = sum
	return nil
}

// Balanced reports accepted == payouts + fees + refunds + held.
func (t Totals) Balanced() bool {
	out, err := money.Sum(t.HostPayouts, t.PlatformFees, t.Refunds, t.Held)
	return err == nil && out.Equal(t.Accepted)
}
