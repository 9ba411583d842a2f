package escrow

import (
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
)

type State string

const (
	StateHeld     State = "held"
	StateReleased State = "released"
	StateRefunded State = "refunded"
)

var (
	ErrPaymentMismatch = errs.NewMarked("payment must equal the gross amount of the stay", errs.ErrInvalidInput)
	ErrEmptyHold       = errs.NewMarked("cannot hold a zero amount", errs.ErrInvalidInput)
	ErrSettled         = errs.NewMarked("escrow is already settled", errs.ErrAlreadySettled)
	ErrNotReleasable   = errs.NewMarked("escrow cannot be released before check-out", errs.ErrNotYetEligible)
	ErrNotRefundable   = errs.NewMarked("escrow cannot be refunded from check-in on", errs.ErrTooLateToCancel)
	ErrUnbalanced      = errs.NewMarked("escrow hold does not balance", errs.ErrInvariantViolation)
	ErrHoldMissing     = errs.NewMarked("escrow hold not found", errs.ErrNotFound)
)

// Hold is the custody record of one booking's payment.
type Hold struct {
	bookingID booking.ID
	guest     party.Identity
	payee     party.Identity
	gross     money.Amount
	held      money.Amount
	feeRate   money.BasisPoints
	fee       money.Amount
	host      money.Amount
	refunded  money.Amount
	state     State
	lockedAt  time.Time
	settledAt *time.Time
}

// Settlement is the split paid out by Release.
type Settlement struct {
	Host money.Amount
	Fee  money.Amount
}

// Lock takes custody of payment, which must equal gross exactly.
func Lock(bookingID booking.ID, guest, payee party.Identity, gross, payment money.Amount, rate money.BasisPoints, now time.Time) (*Hold, error) {
	if gross.IsZero() {
		return nil, ErrEmptyHold
	}
	if !payment.Equal(gross) {
		return nil, ErrPaymentMismatch
	}
	return &Hold{
		bookingID: bookingID,
		guest:     guest,
		payee:     payee,
		gross:     gross,
		held:      payment,
		feeRate:   rate,
		state:     StateHeld,
		lockedAt:  now,
	}, nil
}

func ReconstructHold(
	bookingID booking.ID,
	guest, payee party.Identity,
	gross, held money.Amount,
	rate money.BasisPoints,
	fee, host, refunded money.Amount,
	state State,
	lockedAt time.Time,
	settledAt *time.Time,
) *Hold {
	return &Hold{
		bookingID: bookingID,
		guest:     guest,
		payee:     payee,
		gross:     gross,
		held:      held,
		feeRate:   rate,
		fee:       fee,
		host:      host,
		refunded:  refunded,
		state:     state,
		lockedAt:  lockedAt,
		settledAt: settledAt,
	}
}

// Release splits the held amount between payee and platform. The fee rounds
// down, so any remainder goes to the payee.
func (h *Hold) Release(today, checkOut, now time.Time) (Settlement, error) {
	if h.state != StateHeld || h.held.IsZero() {
		return Settlement{}, ErrSettled
	}
	if today.Before(checkOut) {
		return Settlement{}, ErrNotReleasable
	}
	if !h.held.Equal(h.gross) {
		return Settlement{}, errs.Wrapf(ErrUnbalanced, "booking %d holds %s of %s", h.bookingID, h.held, h.gross)
	}
	fee, host := money.SplitFee(h.held, h.feeRate)
	h.fee, h.host = fee, host
	h.held = money.Zero()
	h.state = StateReleased
	h.settledAt = &now
	return Settlement{Host: host, Fee: fee}, h.CheckBalance()
}

// Refund returns everything held to the guest.
func (h *Hold) Refund(today, checkIn, now time.Time) (money.Amount, error) {
	if h.state != StateHeld || h.held.IsZero() {
		return money.Zero(), ErrSettled
	}
	if !today.Before(checkIn) {
		return money.Zero(), ErrNotRefundable
	}
	amount := h.held
	h.refunded = amount
	h.held = money.Zero()
	h.state = StateRefunded
	h.settledAt = &now
	return amount, h.CheckBalance()
}

// CheckBalance verifies held + host + fee + refunded == gross.
func (h *Hold) CheckBalance() error {
	total, err := money.Sum(h.held, h.host, h.fee, h.refunded)
	if err != nil || !total.Equal(h.gross) {
		return errs.Wrapf(ErrUnbalanced, "booking %d: parts do not sum to %s", h.bookingID, h.gross)
	}
	if (h.state == StateHeld) == h.held.IsZero() {
		return errs.Wrapf(ErrUnbalanced, "booking %d: state %s with held %s", h.bookingID, h.state, h.held)
	}
	return nil
}

func (h *Hold) BookingID() booking.ID      { return h.bookingID }
func (h *Hold) Guest() party.Identity      { return h.guest }
func (h *Hold) Payee() party.Identity      { return h.payee }
func (h *Hold) Gross() money.Amount        { return h.gross }
func (h *Hold) Held() money.Amount         { return h.held }
func (h *Hold) FeeRate() money.BasisPoints { return h.feeRate }
func (h *Hold) Fee() money.Amount          { return h.fee }
func (h *Hold) HostAmount() money.Amount   { return h.host }
func (h *Hold) Refunded() money.Amount     { return h.refunded }
func (h *Hold) State() State               { return h.state }
func (h *Hold) LockedAt() time.Time        { return h.lockedAt }
func (h *Hold) SettledAt() *time.Time      { return h.settledAt }
