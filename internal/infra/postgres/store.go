// Package postgres stores the ledger in PostgreSQL. A listing-scoped unit of
// work locks the listing row, which serialises all work on that listing;
// reservations are additionally guarded by an exclusion constraint.
package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/shared"
)

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
)

// DBTX is satisfied by both the pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool      *pgxpool.Pool
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// New returns a store over pool. publisher may be nil.
func New(pool *pgxpool.Pool, publisher shared.EventPublisher, logger *slog.Logger) *Store {
	return &Store{pool: pool, publisher: publisher, logger: logger}
}

// ReadCommitted is enough: every write path locks what it reads.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, func(ctx context.Context, dbtx pgx.Tx) (*pgTx, error) {
		return newTx(s, dbtx, 0, true), nil
	}, fn)
}

func (s *Store) WithinListing(ctx context.Context, id listing.ID, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, func(ctx context.Context, dbtx pgx.Tx) (*pgTx, error) {
		if err := s.lockListing(ctx, dbtx, id); err != nil {
			return nil, err
		}
		return newTx(s, dbtx, id, false), nil
	}, fn)
}

func (s *Store) WithinBooking(ctx context.Context, id booking.ID, fn func(ctx context.Context, tx shared.Tx) error) error {
	return s.run(ctx, func(ctx context.Context, dbtx pgx.Tx) (*pgTx, error) {
		var lid int64
		err := dbtx.QueryRow(ctx, `SELECT listing_id FROM bookings WHERE id = $1`, id.Int64()).Scan(&lid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, errs.Wrapf(booking.ErrBookingMissing, "booking %d", id)
			}
			return nil, infra.WrapRepoErr(s.logger, infra.KindOf(err), "failed to resolve booking listing", err)
		}
		if err := s.lockListing(ctx, dbtx, listing.ID(lid)); err != nil {
			return nil, err
		}
		return newTx(s, dbtx, listing.ID(lid), false), nil
	}, fn)
}

func (s *Store) lockListing(ctx context.Context, dbtx pgx.Tx, id listing.ID) error {
	var locked int64
	err := dbtx.QueryRow(ctx, `SELECT id FROM listings WHERE id = $1 FOR UPDATE`, id.Int64()).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.Wrapf(listing.ErrListingMissing, "listing %d", id)
		}
		return infra.WrapRepoErr(s.logger, infra.KindOf(err), "failed to lock listing", err)
	}
	return nil
}

// run never retries fn; a failed attempt is rolled back and reported.
func (s *Store) run(
	ctx context.Context,
	open func(ctx context.Context, dbtx pgx.Tx) (*pgTx, error),
	fn func(ctx context.Context, tx shared.Tx) error,
) error {
	dbtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	tx, err := open(ctx, dbtx)
	if err == nil {
		err = fn(ctx, tx)
	}
	if err == nil {
		err = tx.flushEvents(ctx)
	}
	if err == nil {
		if err = dbtx.Commit(ctx); err == nil {
			s.publish(tx.events)
			return nil
		}
		err = errs.Mark(infra.WrapRepoErr(s.logger, infra.KindOf(err), "commit", err), errTransactionCommit)
	}

	if rollbackErr := dbtx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		s.logger.Warn("rollback failed", slog.String("error", rollbackErr.Error()))
	}
	return err
}

// publish runs after commit. Concurrent commits may still be delivered out of
// seq order; a subscriber that sees a gap fills it from the log.
func (s *Store) publish(evs []event.Event) {
	if s.publisher != nil && len(evs) > 0 {
		s.publisher.Publish(evs)
	}
}
