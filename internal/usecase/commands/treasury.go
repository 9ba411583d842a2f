package commands

import (
	"context"

	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/usecase/shared"
)

type TreasuryCommands interface {
	// Withdraw pays out part of holder's released balance. Only the holder may call it.
	Withdraw(ctx context.Context, holder, caller party.Identity, amountMinor int64) (*escrow.Account, error)
}

type treasuryUseCaseImpl struct {
	base
}

func NewTreasuryUseCase(uow shared.UnitOfWork, clk clock.Clock, settings Settings) TreasuryCommands {
	return &treasuryUseCaseImpl{base{uow: uow, clock: clk, settings: settings}}
}

func (uc *treasuryUseCaseImpl) Withdraw(ctx context.Context, holder, caller party.Identity, amountMinor int64) (*escrow.Account, error) {
	amount, err := money.New(amountMinor)
	if err != nil {
		return nil, err
	}

	var out *escrow.Account
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now, _ := uc.now()
		a, err := tx.Accounts().Get(ctx, holder)
		if err != nil {
			return err
		}
		entry, err := a.Withdraw(caller, amount, now)
		if err != nil {
			return err
		}
		if err := tx.Accounts().Save(ctx, a); err != nil {
			return err
		}
		if err := tx.Escrow().AppendEntries(ctx, entry); err != nil {
			return err
		}

		evs := newEvents(caller, now)
		evs.add(event.KindFundsWithdrawn, event.EntityAccount, holder.String(), withdrawnPayload{
			AmountMinor:  amount.Minor(),
			BalanceMinor: a.Balance().Minor(),
		})
		if err := evs.append(ctx, tx); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
