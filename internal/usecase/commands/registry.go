package commands

import (
	"context"

	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/usecase/shared"
)

type CreateListingInput struct {
	PricePerNightMinor int64
	Name               string
	Location           string
	Description        string
	ImageURI           string
}

type RegistryCommands interface {
	CreateListing(ctx context.Context, owner party.Identity, in CreateListingInput) (*listing.Listing, error)
	// Deactivate is idempotent; an already inactive listing emits nothing.
	Deactivate(ctx context.Context, id listing.ID, caller party.Identity) (*listing.Listing, error)
	UpdatePrice(ctx context.Context, id listing.ID, caller party.Identity, priceMinor int64) (*listing.Listing, error)
}

type registryUseCaseImpl struct {
	base
}

func NewRegistryUseCase(uow shared.UnitOfWork, clk clock.Clock, settings Settings) RegistryCommands {
	return &registryUseCaseImpl{base{uow: uow, clock: clk, settings: settings}}
}

func (uc *registryUseCaseImpl) CreateListing(ctx context.Context, owner party.Identity, in CreateListingInput) (*listing.Listing, error) {
	price, err := money.New(in.PricePerNightMinor)
	if err != nil {
		return nil, err
	}
	meta, err := listing.NewMetadata(in.Name, in.Location, in.Description, in.ImageURI)
	if err != nil {
		return nil, err
	}

	var created *listing.Listing
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now, _ := uc.now()
		id, err := tx.Listings().NextID(ctx)
		if err != nil {
			return err
		}
		l, err := listing.NewListing(id, owner, price, meta, now)
		if err != nil {
			return err
		}
		if err := tx.Listings().Create(ctx, l); err != nil {
			return err
		}

		evs := newEvents(owner, now)
		evs.add(event.KindListingCreated, event.EntityListing, id.String(), listingCreatedPayload{
			Owner:              owner.String(),
			PricePerNightMinor: price.Minor(),
			Name:               meta.Name(),
		})
		if err := evs.append(ctx, tx); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (uc *registryUseCaseImpl) Deactivate(ctx context.Context, id listing.ID, caller party.Identity) (*listing.Listing, error) {
	var out *listing.Listing
	err := uc.uow.WithinListing(ctx, id, func(ctx context.Context, tx shared.Tx) error {
		now, _ := uc.now()
		l, err := loadListing(ctx, tx, id)
		if err != nil {
			return err
		}
		changed, err := l.Deactivate(caller, now)
		if err != nil {
			return err
		}
		out = l
		if !changed {
			return nil
		}
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}
		evs := newEvents(caller, now)
		evs.add(event.KindListingDeactivated, event.EntityListing, id.String(), nil)
		return evs.append(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *registryUseCaseImpl) UpdatePrice(ctx context.Context, id listing.ID, caller party.Identity, priceMinor int64) (*listing.Listing, error) {
	price, err := money.New(priceMinor)
	if err != nil {
		return nil, err
	}

	var out *listing.Listing
	err = uc.uow.WithinListing(ctx, id, func(ctx context.Context, tx shared.Tx) error {
		now, _ := uc.now()
		l, err := loadListing(ctx, tx, id)
		if err != nil {
			return err
		}
		old := l.PricePerNight()
		if err := l.UpdatePrice(caller, price, now); err != nil {
			return err
		}
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}
		evs := newEvents(caller, now)
		evs.add(event.KindListingPriceUpdated, event.EntityListing, id.String(), listingPricePayload{
			OldPriceMinor: old.Minor(),
			NewPriceMinor: price.Minor(),
		})
		if err := evs.append(ctx, tx); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
