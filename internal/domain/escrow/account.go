package escrow

import (
	"time"

	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/errs"
)

var (
	ErrNotAccountHolder = errs.NewMarked("only the account holder may withdraw", errs.ErrNotAuthorized)
	ErrInsufficient     = errs.NewMarked("balance is lower than the requested amount", errs.ErrInsufficientFunds)
	ErrEmptyWithdrawal  = errs.NewMarked("withdrawal amount must be positive", errs.ErrInvalidInput)
)

// Account holds funds that left escrow and wait to be withdrawn.
type Account struct {
	holder    party.Identity
	balance   money.Amount
	updatedAt time.Time
}

func NewAccount(holder party.Identity) *Account {
	return &Account{holder: holder}
}

func ReconstructAccount(holder party.Identity, balance money.Amount, updatedAt time.Time) *Account {
	return &Account{holder: holder, balance: balance, updatedAt: updatedAt}
}

func (a *Account) Withdraw(caller party.Identity, amount money.Amount, now time.Time) (Entry, error) {
	if caller != a.holder {
		return Entry{}, ErrNotAccountHolder
	}
	if amount.IsZero() {
		return Entry{}, ErrEmptyWithdrawal
	}
	rest, err := a.balance.Sub(amount)
	if err != nil {
		return Entry{}, ErrInsufficient
	}
	a.balance = rest
	a.updatedAt = now
	return Entry{Kind: EntryWithdrawal, Account: a.holder, Amount: amount, At: now}, nil
}

func (a *Account) Holder() party.Identity { return a.holder }
func (a *Account) Balance() money.Amount  { return a.balance }
func (a *Account) UpdatedAt() time.Time   { return a.updatedAt }

// Credit is a pending increase of holder's balance, applied by the store.
// At becomes the account's updated time.
type Credit struct {
	Holder party.Identity
	Amount money.Amount
	At     time.Time
}

// CreditsFor maps payout-side entries to balance credits.
func CreditsFor(entries []Entry) []Credit {
	var out []Credit
	for _, e := range entries {
		switch e.Kind {
		case EntryHostPayout, EntryPlatformFee, EntryRefund:
			out = append(out, Credit{Holder: e.Account, Amount: e.Amount, At: e.At})
		}
	}
	return out
}
