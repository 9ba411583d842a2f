//go:build unit

package memstore_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"stay-ledger/internal/domain/availability"
	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/infra/memstore"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/shared"
	"stay-ledger/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ got [][]event.Event }

func (r *recorder) Publish(evs []event.Event) { r.got = append(r.got, evs) }

func newStore(t *testing.T) (*memstore.Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	return memstore.New(rec, slog.New(slog.NewTextHandler(io.Discard, nil))), rec
}

func createListing(t *testing.T, s *memstore.Store) listing.ID {
	t.Helper()
	var id listing.ID
	err := s.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		next, err := tx.Listings().NextID(ctx)
		if err != nil {
			return err
		}
		l, err := builder.NewListingBuilder().With(func(b *builder.ListingBuilder) { b.ID = next }).BuildDomain()
		if err != nil {
			return err
		}
		id = next
		ev, err := event.New(event.KindListingCreated, event.EntityListing, next.String(), "host-1", time.Now(), nil)
		if err != nil {
			return err
		}
		if err := tx.Events().Append(ctx, ev); err != nil {
			return err
		}
		return tx.Listings().Create(ctx, l)
	})
	require.NoError(t, err)
	return id
}

func TestStore_CommitPublishesWithSequence(t *testing.T) {
	s, rec := newStore(t)
	first := createListing(t, s)
	second := createListing(t, s)

	assert.Equal(t, listing.ID(1), first)
	assert.Equal(t, listing.ID(2), second)
	require.Len(t, rec.got, 2)
	assert.Equal(t, int64(1), rec.got[0][0].Seq)
	assert.Equal(t, int64(2), rec.got[1][0].Seq)

	evs, err := s.Events(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, int64(2), evs[0].Seq)
}

func TestStore_FailedUnitOfWorkLeavesNothing(t *testing.T) {
	s, rec := newStore(t)
	id := createListing(t, s)
	boom := errs.New("boom")

	err := s.WithinListing(context.Background(), id, func(ctx context.Context, tx shared.Tx) error {
		l, err := tx.Listings().Get(ctx, id)
		require.NoError(t, err)
		l.RecordBooking(time.Now())
		require.NoError(t, tx.Listings().Update(ctx, l))

		b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.ListingID = id }).BuildConfirmed()
		require.NoError(t, tx.Bookings().Create(ctx, b))
		ev, _ := event.New(event.KindBookingConfirmed, event.EntityBooking, "1", "guest-1", time.Now(), nil)
		require.NoError(t, tx.Events().Append(ctx, ev))
		return boom
	})
	require.ErrorIs(t, err, boom)

	l, err := s.Listing(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.TotalBookings())

	_, _, err = s.Booking(context.Background(), 1)
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
	assert.Len(t, rec.got, 1)
}

func TestStore_UnknownScopes(t *testing.T) {
	s, _ := newStore(t)
	noop := func(context.Context, shared.Tx) error { return nil }

	err := s.WithinListing(context.Background(), 99, noop)
	assert.True(t, errs.Is(err, listing.ErrListingMissing))

	err = s.WithinBooking(context.Background(), 99, noop)
	assert.True(t, errs.Is(err, booking.ErrBookingMissing))
}

func TestStore_ReservationsSecondLineOfDefence(t *testing.T) {
	s, _ := newStore(t)
	id := createListing(t, s)
	stay, err := booking.ParseStayRange("2026-03-01", "2026-03-05")
	require.NoError(t, err)
	clash, err := booking.ParseStayRange("2026-03-04", "2026-03-06")
	require.NoError(t, err)

	err = s.WithinListing(context.Background(), id, func(ctx context.Context, tx shared.Tx) error {
		require.NoError(t, tx.Reservations().Insert(ctx, id, availability.Interval{BookingID: 1, Stay: stay}))
		err := tx.Reservations().Insert(ctx, id, availability.Interval{BookingID: 2, Stay: clash})
		assert.True(t, infra.IsKind(err, infra.KindConflict))
		return nil
	})
	require.NoError(t, err)

	window, _ := booking.ParseStayRange("2026-02-01", "2026-04-01")
	blocked, err := s.ActiveIntervals(context.Background(), id, window)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, booking.ID(1), blocked[0].BookingID)
}

func TestStore_ListingScopeIsEnforced(t *testing.T) {
	s, _ := newStore(t)
	a := createListing(t, s)
	b := createListing(t, s)

	err := s.WithinListing(context.Background(), a, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Listings().Get(ctx, b)
		return err
	})
	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
}
