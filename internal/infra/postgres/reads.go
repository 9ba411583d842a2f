package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/domain/review"
	"stay-ledger/internal/infra"
)

func (s *Store) wrap(msg string, err error) error {
	return infra.WrapRepoErr(s.logger, infra.KindOf(err), msg, err)
}

// snapshot runs fn in a read-only repeatable-read transaction so that
// multi-statement reads agree with each other.
func (s *Store) snapshot(ctx context.Context, fn func(ctx context.Context, db DBTX) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return s.wrap("failed to begin read transaction", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.logger.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Listing(ctx context.Context, id listing.ID) (*listing.Listing, error) {
	l, err := scanListing(s.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id.Int64()))
	if err != nil {
		return nil, s.wrap("failed to get listing", err)
	}
	return l, nil
}

func (s *Store) BookingListing(ctx context.Context, id booking.ID) (listing.ID, error) {
	var lid int64
	if err := s.pool.QueryRow(ctx, `SELECT listing_id FROM bookings WHERE id = $1`, id.Int64()).Scan(&lid); err != nil {
		return 0, s.wrap("failed to get booking listing", err)
	}
	return listing.ID(lid), nil
}

func (s *Store) Booking(ctx context.Context, id booking.ID) (*booking.Booking, *escrow.Hold, error) {
	var (
		b *booking.Booking
		h *escrow.Hold
	)
	err := s.snapshot(ctx, func(ctx context.Context, db DBTX) error {
		var err error
		b, err = scanBooking(db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id.Int64()))
		if err != nil {
			return s.wrap("failed to get booking", err)
		}
		h, err = scanHold(db.QueryRow(ctx, `SELECT `+holdColumns+` FROM escrow_holds WHERE booking_id = $1`, id.Int64()))
		if err != nil {
			if infra.KindOf(err) == infra.KindNotFound {
				h = nil
				return nil
			}
			return s.wrap("failed to get escrow hold", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return b, h, nil
}

func (s *Store) ActiveIntervals(ctx context.Context, id listing.ID, window booking.StayRange) ([]availability.Interval, error) {
	rows, err := s.pool.Query(ctx, `SELECT booking_id, lower(stay), upper(stay), historical
		FROM reservations
		WHERE listing_id = $1 AND NOT historical AND stay && daterange($2::date, $3::date, '[)')
		ORDER BY lower(stay)`,
		id.Int64(), window.CheckIn(), window.CheckOut())
	if err != nil {
		return nil, s.wrap("failed to list reservations", err)
	}
	out, err := collect(rows, scanInterval)
	if err != nil {
		return nil, s.wrap("failed to scan reservations", err)
	}
	return out, nil
}

func (s *Store) Reviews(ctx context.Context, id listing.ID, afterID review.ID, limit int) ([]*review.Review, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews
		WHERE listing_id = $1 AND id > $2 ORDER BY id LIMIT $3`,
		id.Int64(), afterID.Int64(), limit)
	if err != nil {
		return nil, s.wrap("failed to list reviews", err)
	}
	out, err := collect(rows, scanReview)
	if err != nil {
		return nil, s.wrap("failed to scan reviews", err)
	}
	return out, nil
}

func (s *Store) Events(ctx context.Context, afterSeq int64, limit int) ([]event.Event, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE seq > $1 ORDER BY seq LIMIT $2`,
		afterSeq, limit)
	if err != nil {
		return nil, s.wrap("failed to list events", err)
	}
	out, err := collect(rows, scanEvent)
	if err != nil {
		return nil, s.wrap("failed to scan events", err)
	}
	if out == nil {
		out = []event.Event{}
	}
	return out, nil
}

func (s *Store) DueBookings(ctx context.Context, today time.Time, skip []listing.ID, limit int) ([]booking.ID, error) {
	skipped := make([]int64, len(skip))
	for i, id := range skip {
		skipped[i] = id.Int64()
	}
	rows, err := s.pool.Query(ctx, `SELECT id FROM bookings
		WHERE status = 'confirmed' AND check_out <= $1::date AND listing_id <> ALL($2::bigint[])
		ORDER BY id LIMIT $3`, today, skipped, limit)
	if err != nil {
		return nil, s.wrap("failed to list due bookings", err)
	}
	out, err := collect(rows, func(row pgx.Row) (booking.ID, error) {
		var id int64
		err := row.Scan(&id)
		return booking.ID(id), err
	})
	if err != nil {
		return nil, s.wrap("failed to scan due bookings", err)
	}
	return out, nil
}

// Totals reads the journal and the live holds from one snapshot.
func (s *Store) Totals(ctx context.Context) (escrow.Totals, error) {
	var t escrow.Totals
	err := s.snapshot(ctx, func(ctx context.Context, db DBTX) error {
		rows, err := db.Query(ctx, `SELECT kind, COALESCE(SUM(amount), 0)::bigint
			FROM ledger_entries GROUP BY kind`)
		if err != nil {
			return s.wrap("failed to sum journal", err)
		}
		sums, err := collect(rows, func(row pgx.Row) (escrow.Entry, error) {
			var (
				kind   string
				amount int64
			)
			if err := row.Scan(&kind, &amount); err != nil {
				return escrow.Entry{}, err
			}
			var d decoder
			e := escrow.Entry{Kind: escrow.EntryKind(kind), Amount: d.amount(amount)}
			return e, d.err
		})
		if err != nil {
			return s.wrap("failed to scan journal sums", err)
		}
		for _, e := range sums {
			if err := t.Apply(e); err != nil {
				return err
			}
		}

		var held int64
		if err := db.QueryRow(ctx, `SELECT COALESCE(SUM(held_amount), 0)::bigint FROM escrow_holds`).Scan(&held); err != nil {
			return s.wrap("failed to sum holds", err)
		}
		var d decoder
		t.Held = d.amount(held)
		return d.err
	})
	return t, err
}

func (s *Store) Account(ctx context.Context, holder party.Identity) (*escrow.Account, error) {
	var (
		balance   int64
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx, `SELECT balance, updated_at FROM accounts WHERE holder = $1`,
		holder.String()).Scan(&balance, &updatedAt)
	if err != nil {
		return nil, s.wrap("failed to get account", err)
	}
	var d decoder
	a := escrow.ReconstructAccount(holder, d.amount(balance), updatedAt.UTC())
	return a, d.err
}
