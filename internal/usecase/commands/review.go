package commands

import (
	"context"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/party"
	domreview "stay-ledger/internal/domain/review"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/usecase/shared"
)

type ReviewCommands interface {
	Submit(ctx context.Context, bookingID booking.ID, reviewer party.Identity, rating int, comment string) (*domreview.Review, error)
}

type reviewUseCaseImpl struct {
	base
}

func NewReviewUseCase(uow shared.UnitOfWork, clk clock.Clock, settings Settings) ReviewCommands {
	return &reviewUseCaseImpl{base{uow: uow, clock: clk, settings: settings}}
}

func (uc *reviewUseCaseImpl) Submit(ctx context.Context, bookingID booking.ID, reviewer party.Identity, rating int, comment string) (*domreview.Review, error) {
	if _, err := domreview.NewRating(rating); err != nil {
		return nil, err
	}
	if _, err := domreview.NewComment(comment); err != nil {
		return nil, err
	}

	var created *domreview.Review
	err := uc.uow.WithinBooking(ctx, bookingID, func(ctx context.Context, tx shared.Tx) error {
		now, _ := uc.now()
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		exists, err := tx.Reviews().ExistsForBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := domreview.CheckEligibility(b, reviewer, exists); err != nil {
			return err
		}
		l, err := loadListing(ctx, tx, b.ListingID())
		if err != nil {
			return err
		}

		id, err := tx.Reviews().NextID(ctx)
		if err != nil {
			return err
		}
		r, err := domreview.NewReview(id, bookingID, b.ListingID(), reviewer, rating, comment, now)
		if err != nil {
			return err
		}
		if err := l.RecordRating(rating, now); err != nil {
			return err
		}
		if err := tx.Reviews().Create(ctx, r); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return domreview.ErrReviewAlreadyExists
			}
			return err
		}
		if err := tx.Listings().Update(ctx, l); err != nil {
			return err
		}

		evs := newEvents(reviewer, now)
		evs.add(event.KindReviewSubmitted, event.EntityReview, id.String(), reviewSubmittedPayload{
			BookingID: bookingID.Int64(),
			ListingID: b.ListingID().Int64(),
			Rating:    rating,
		})
		if err := evs.append(ctx, tx); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
