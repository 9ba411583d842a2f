//go:build unit

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/escrow"
	"stay-ledger/internal/domain/event"
	"stay-ledger/internal/domain/listing"
	"stay-ledger/internal/domain/money"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/infra"
	"stay-ledger/internal/infra/events"
	"stay-ledger/internal/infra/memstore"
	"stay-ledger/internal/pkg/clock"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase"
	"stay-ledger/internal/usecase/commands"
	"stay-ledger/internal/usecase/queries"
	"stay-ledger/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	host     = party.MustIdentity("host-1")
	guest    = party.MustIdentity("guest-1")
	stranger = party.MustIdentity("stranger")
	platform = party.MustIdentity("platform")

	start = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
)

type harness struct {
	ledger usecase.Ledger
	store  *memstore.Store
	broker *events.Broker
	clock  *clock.MockClock
}

func newHarness(feeRate int64, wrap func(shared.UnitOfWork) shared.UnitOfWork) *harness {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := events.NewBroker(16, logger)
	store := memstore.New(broker, logger)
	clk := clock.NewMockClock(start)

	rate, err := money.NewBasisPoints(feeRate)
	if err != nil {
		panic(err)
	}
	settings := commands.Settings{FeeRate: rate, Platform: platform}

	var uow shared.UnitOfWork = store
	if wrap != nil {
		uow = wrap(store)
	}
	l := usecase.NewLedger(
		commands.NewRegistryUseCase(uow, clk, settings),
		commands.NewBookingUseCase(uow, clk, settings),
		commands.NewReviewUseCase(uow, clk, settings),
		commands.NewTreasuryUseCase(uow, clk, settings),
		queries.NewLedgerQueries(store, 100),
		broker,
		clk,
		logger,
	)
	return &harness{ledger: l, store: store, broker: broker, clock: clk}
}

func (h *harness) createListing(t *testing.T, price int64) listing.ID {
	t.Helper()
	v, err := h.ledger.CreateListing(context.Background(), host, commands.CreateListingInput{
		PricePerNightMinor: price,
		Name:               "Seaside cabin",
		Location:           "Kamakura",
		Description:        "Two rooms near the beach",
		ImageURI:           "https://example.com/cabin.jpg",
	})
	require.NoError(t, err)
	return listing.ID(v.ID)
}

// day returns the calendar date n days after the harness start.
func day(n int) time.Time {
	return clock.DateOf(start).AddDate(0, 0, n)
}

func (h *harness) book(ctx context.Context, lid listing.ID, who party.Identity, from, to int, price int64, key string) (*usecase.BookResult, error) {
	return h.ledger.Book(ctx, commands.BookInput{
		ListingID:      lid,
		Guest:          who,
		CheckIn:        day(from),
		CheckOut:       day(to),
		PaymentMinor:   price * int64(to-from),
		IdempotencyKey: key,
	})
}

func (h *harness) eventCount(t *testing.T) int {
	t.Helper()
	page, err := h.ledger.ListEvents(context.Background(), 0, 100)
	require.NoError(t, err)
	return len(page.Items)
}

func (h *harness) balance(t *testing.T, who party.Identity) int64 {
	t.Helper()
	a, err := h.ledger.Balance(context.Background(), who)
	require.NoError(t, err)
	return a.BalanceMinor
}

func TestLedger_BookAndComplete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(250, nil)
	lid := h.createListing(t, 333)

	res, err := h.book(ctx, lid, guest, 10, 13, 333, "")
	require.NoError(t, err)
	b := res.Booking
	assert.False(t, res.Replayed)
	assert.Equal(t, string(booking.StatusConfirmed), b.Status)
	assert.Equal(t, int64(999), b.GrossAmountMinor)
	assert.Equal(t, int64(24), b.FeeAmountMinor)
	assert.Equal(t, int64(975), b.NetToHostMinor)
	assert.Equal(t, int64(999), b.EscrowHeldMinor)
	assert.Equal(t, string(escrow.StateHeld), b.EscrowState)

	l, err := h.ledger.GetListing(ctx, lid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.TotalBookings)

	t.Run("チェックアウト前の完了は早すぎる", func(t *testing.T) {
		h.clock.AddDays(12)
		_, err := h.ledger.CompleteIfDue(ctx, booking.ID(b.ID), stranger)
		require.Error(t, err)
		assert.True(t, errs.Is(err, booking.ErrNotDue))
		assert.True(t, errs.Is(err, errs.ErrNotYetEligible))
	})

	t.Run("チェックアウト日に誰でも完了できる", func(t *testing.T) {
		h.clock.AddDays(1)
		got, err := h.ledger.CompleteIfDue(ctx, booking.ID(b.ID), stranger)
		require.NoError(t, err)
		assert.Equal(t, string(booking.StatusCompleted), got.Status)
		assert.Equal(t, string(escrow.StateReleased), got.EscrowState)
		assert.Zero(t, got.EscrowHeldMinor)
		assert.Equal(t, int64(975), h.balance(t, host))
		assert.Equal(t, int64(24), h.balance(t, platform))
	})

	t.Run("完了の再実行は何も変えない", func(t *testing.T) {
		before := h.eventCount(t)
		got, err := h.ledger.CompleteIfDue(ctx, booking.ID(b.ID), host)
		require.NoError(t, err)
		assert.Equal(t, string(booking.StatusCompleted), got.Status)
		assert.Equal(t, before, h.eventCount(t))
		assert.Equal(t, int64(975), h.balance(t, host))
	})

	t.Run("トレジャリーは釣り合う", func(t *testing.T) {
		tr, err := h.ledger.Treasury(ctx)
		require.NoError(t, err)
		assert.True(t, tr.Balanced)
		assert.Equal(t, int64(999), tr.AcceptedMinor)
		assert.Equal(t, int64(975), tr.HostPayoutsMinor)
		assert.Equal(t, int64(24), tr.PlatformFeesMinor)
		assert.Zero(t, tr.HeldMinor)
	})

	t.Run("ホストは残高の範囲で出金できる", func(t *testing.T) {
		_, err := h.ledger.Withdraw(ctx, host, stranger, 100)
		assert.True(t, errs.Is(err, errs.ErrNotAuthorized))

		_, err = h.ledger.Withdraw(ctx, host, host, 976)
		assert.True(t, errs.Is(err, errs.ErrInsufficientFunds))

		a, err := h.ledger.Withdraw(ctx, host, host, 975)
		require.NoError(t, err)
		assert.Zero(t, a.BalanceMinor)

		tr, err := h.ledger.Treasury(ctx)
		require.NoError(t, err)
		assert.True(t, tr.Balanced)
		assert.Equal(t, int64(975), tr.WithdrawalsMinor)
	})
}

func TestLedger_BookRejects(t *testing.T) {
	ctx := context.Background()
	h := newHarness(250, nil)
	lid := h.createListing(t, 100)

	_, err := h.book(ctx, lid, guest, 5, 8, 100, "")
	require.NoError(t, err)

	cases := []struct {
		name  string
		in    commands.BookInput
		class error
	}{
		{
			name:  "重複する日程",
			in:    commands.BookInput{ListingID: lid, Guest: guest, CheckIn: day(7), CheckOut: day(9), PaymentMinor: 200},
			class: errs.ErrDatesUnavailable,
		},
		{
			name:  "支払額が総額と違う",
			in:    commands.BookInput{ListingID: lid, Guest: guest, CheckIn: day(8), CheckOut: day(9), PaymentMinor: 99},
			class: errs.ErrInvalidInput,
		},
		{
			name:  "過去のチェックイン",
			in:    commands.BookInput{ListingID: lid, Guest: guest, CheckIn: day(-1), CheckOut: day(1), PaymentMinor: 200},
			class: errs.ErrInvalidInput,
		},
		{
			name:  "チェックアウトがチェックイン以前",
			in:    commands.BookInput{ListingID: lid, Guest: guest, CheckIn: day(9), CheckOut: day(9), PaymentMinor: 0},
			class: errs.ErrInvalidInput,
		},
		{
			name:  "存在しない物件",
			in:    commands.BookInput{ListingID: lid + 99, Guest: guest, CheckIn: day(8), CheckOut: day(9), PaymentMinor: 100},
			class: errs.ErrNotFound,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			before := h.eventCount(t)
			_, err := h.ledger.Book(ctx, c.in)
			require.Error(t, err)
			assert.Equal(t, c.class, errs.ClassOf(err))
			assert.Equal(t, before, h.eventCount(t), "rejected booking must not emit events")
		})
	}

	t.Run("チェックアウト日からの予約は重ならない", func(t *testing.T) {
		_, err := h.book(ctx, lid, guest, 8, 10, 100, "")
		require.NoError(t, err)
	})

	t.Run("非公開の物件は予約できない", func(t *testing.T) {
		_, err := h.ledger.Deactivate(ctx, lid, host)
		require.NoError(t, err)
		_, err = h.book(ctx, lid, guest, 20, 21, 100, "")
		assert.True(t, errs.Is(err, listing.ErrInactive))
	})
}

func TestLedger_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("当事者以外は取り消せない", func(t *testing.T) {
		h := newHarness(250, nil)
		lid := h.createListing(t, 100)
		res, err := h.book(ctx, lid, guest, 3, 5, 100, "")
		require.NoError(t, err)

		_, err = h.ledger.Cancel(ctx, booking.ID(res.Booking.ID), stranger)
		assert.True(t, errs.Is(err, errs.ErrNotAuthorized))
	})

	t.Run("チェックイン前日なら全額返金され日程が空く", func(t *testing.T) {
		h := newHarness(250, nil)
		lid := h.createListing(t, 100)
		res, err := h.book(ctx, lid, guest, 3, 5, 100, "")
		require.NoError(t, err)

		h.clock.AddDays(2)
		got, err := h.ledger.Cancel(ctx, booking.ID(res.Booking.ID), host)
		require.NoError(t, err)
		assert.Equal(t, string(booking.StatusCancelled), got.Status)
		assert.Equal(t, string(escrow.StateRefunded), got.EscrowState)
		assert.Equal(t, int64(200), got.RefundedMinor)
		assert.Equal(t, int64(200), h.balance(t, guest))

		av, err := h.ledger.GetAvailability(ctx, lid, day(3), day(5))
		require.NoError(t, err)
		assert.True(t, av.Available)

		_, err = h.ledger.Cancel(ctx, booking.ID(res.Booking.ID), guest)
		assert.True(t, errs.Is(err, errs.ErrAlreadySettled))
	})

	t.Run("チェックイン当日は取り消せない", func(t *testing.T) {
		h := newHarness(250, nil)
		lid := h.createListing(t, 100)
		res, err := h.book(ctx, lid, guest, 3, 5, 100, "")
		require.NoError(t, err)

		h.clock.AddDays(3)
		_, err = h.ledger.Cancel(ctx, booking.ID(res.Booking.ID), guest)
		assert.True(t, errs.Is(err, errs.ErrTooLateToCancel))

		got, err := h.ledger.GetBooking(ctx, booking.ID(res.Booking.ID))
		require.NoError(t, err)
		assert.Equal(t, string(booking.StatusConfirmed), got.Status)
		assert.Equal(t, int64(200), got.EscrowHeldMinor)
	})
}

func TestLedger_Idempotency(t *testing.T) {
	ctx := context.Background()
	h := newHarness(250, nil)
	lid := h.createListing(t, 100)

	first, err := h.book(ctx, lid, guest, 3, 5, 100, "key-1")
	require.NoError(t, err)
	count := h.eventCount(t)

	t.Run("同じ要求の再送は元の予約を返す", func(t *testing.T) {
		again, err := h.book(ctx, lid, guest, 3, 5, 100, "key-1")
		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, first.Booking.ID, again.Booking.ID)
		assert.Equal(t, count, h.eventCount(t))
	})

	t.Run("別の要求に同じキーは使えない", func(t *testing.T) {
		_, err := h.book(ctx, lid, guest, 6, 7, 100, "key-1")
		require.Error(t, err)
		assert.True(t, errs.Is(err, commands.ErrIdempotencyKeyReused))
	})

	t.Run("キーは呼び出し元ごと", func(t *testing.T) {
		other, err := h.book(ctx, lid, party.MustIdentity("guest-2"), 6, 7, 100, "key-1")
		require.NoError(t, err)
		assert.False(t, other.Replayed)
		assert.NotEqual(t, first.Booking.ID, other.Booking.ID)
	})
}

func TestLedger_Reviews(t *testing.T) {
	ctx := context.Background()
	h := newHarness(250, nil)
	lid := h.createListing(t, 100)
	res, err := h.book(ctx, lid, guest, 1, 2, 100, "")
	require.NoError(t, err)
	bid := booking.ID(res.Booking.ID)

	_, err = h.ledger.SubmitReview(ctx, bid, guest, 5, "Lovely")
	assert.True(t, errs.Is(err, errs.ErrNotEligible), "booking not completed yet")

	h.clock.AddDays(2)
	_, err = h.ledger.CompleteIfDue(ctx, bid, guest)
	require.NoError(t, err)

	_, err = h.ledger.SubmitReview(ctx, bid, stranger, 5, "Lovely")
	assert.True(t, errs.Is(err, errs.ErrNotEligible), "only the guest may review")

	_, err = h.ledger.SubmitReview(ctx, bid, guest, 6, "Lovely")
	assert.True(t, errs.Is(err, errs.ErrInvalidInput))

	r, err := h.ledger.SubmitReview(ctx, bid, guest, 4, "Lovely")
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, lid.Int64(), r.ListingID)

	_, err = h.ledger.SubmitReview(ctx, bid, guest, 5, "Again")
	assert.True(t, errs.Is(err, errs.ErrNotEligible), "one review per booking")

	l, err := h.ledger.GetListing(ctx, lid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.RatingCount)
	assert.Equal(t, int64(4), l.RatingSum)

	page, err := h.ledger.ListReviews(ctx, lid, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.NextAfter)
}

func TestLedger_EventsStream(t *testing.T) {
	ctx := context.Background()
	h := newHarness(250, nil)
	ch, cancel := h.ledger.Subscribe()
	defer cancel()

	lid := h.createListing(t, 100)
	_, err := h.book(ctx, lid, guest, 1, 2, 100, "")
	require.NoError(t, err)

	var kinds []event.Kind
	var last int64
	for i := 0; i < 3; i++ {
		select {
		case ev := <-ch:
			assert.Greater(t, ev.Seq, last)
			last = ev.Seq
			kinds = append(kinds, ev.Kind)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	assert.Equal(t, []event.Kind{event.KindListingCreated, event.KindBookingConfirmed, event.KindEscrowLocked}, kinds)
}

// missingHoldUoW loses escrow holds on booking-scoped work once broken is set.
type missingHoldUoW struct {
	shared.UnitOfWork
	broken atomic.Bool
}

func (u *missingHoldUoW) WithinBooking(ctx context.Context, id booking.ID, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.UnitOfWork.WithinBooking(ctx, id, func(ctx context.Context, tx shared.Tx) error {
		if u.broken.Load() {
			tx = missingHoldTx{Tx: tx}
		}
		return fn(ctx, tx)
	})
}

type missingHoldTx struct{ shared.Tx }

func (t missingHoldTx) Escrow() shared.EscrowRepository {
	return missingHoldRepo{EscrowRepository: t.Tx.Escrow()}
}

type missingHoldRepo struct{ shared.EscrowRepository }

func (missingHoldRepo) GetHold(context.Context, booking.ID) (*escrow.Hold, error) {
	return nil, infra.RepositoryError{Kind: infra.KindNotFound}
}

func TestLedger_HaltsListingOnInvariantViolation(t *testing.T) {
	ctx := context.Background()
	var faulty *missingHoldUoW
	h := newHarness(250, func(u shared.UnitOfWork) shared.UnitOfWork {
		faulty = &missingHoldUoW{UnitOfWork: u}
		return faulty
	})
	broken := h.createListing(t, 100)
	healthy := h.createListing(t, 100)

	res, err := h.book(ctx, broken, guest, 3, 5, 100, "")
	require.NoError(t, err)
	bid := booking.ID(res.Booking.ID)

	faulty.broken.Store(true)
	_, err = h.ledger.Cancel(ctx, bid, guest)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrInvariantViolation))
	assert.True(t, h.ledger.IsHalted(broken))
	faulty.broken.Store(false)

	_, err = h.book(ctx, broken, guest, 10, 11, 100, "")
	assert.True(t, errs.Is(err, errs.ErrEntityHalted))
	_, err = h.ledger.GetListing(ctx, broken)
	assert.True(t, errs.Is(err, errs.ErrEntityHalted))
	_, err = h.ledger.GetBooking(ctx, bid)
	assert.True(t, errs.Is(err, errs.ErrEntityHalted))
	_, err = h.ledger.Cancel(ctx, bid, guest)
	assert.True(t, errs.Is(err, errs.ErrEntityHalted))

	h.clock.AddDays(5)
	due, err := h.ledger.DueBookings(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due, "halted listings are skipped by the sweeper")

	_, err = h.book(ctx, healthy, guest, 10, 11, 100, "")
	assert.NoError(t, err, "other listings keep working")
}

func TestLedger_DueBookingsSkipHaltedListingsBeforeLimit(t *testing.T) {
	ctx := context.Background()
	var faulty *missingHoldUoW
	h := newHarness(250, func(u shared.UnitOfWork) shared.UnitOfWork {
		faulty = &missingHoldUoW{UnitOfWork: u}
		return faulty
	})
	broken := h.createListing(t, 100)
	healthy := h.createListing(t, 100)

	first, err := h.book(ctx, broken, guest, 1, 2, 100, "")
	require.NoError(t, err)
	_, err = h.book(ctx, broken, guest, 2, 3, 100, "")
	require.NoError(t, err)
	ok, err := h.book(ctx, healthy, guest, 1, 2, 100, "")
	require.NoError(t, err)

	faulty.broken.Store(true)
	_, err = h.ledger.Cancel(ctx, booking.ID(first.Booking.ID), guest)
	require.True(t, errs.Is(err, errs.ErrInvariantViolation))
	faulty.broken.Store(false)
	require.True(t, h.ledger.IsHalted(broken))

	h.clock.AddDays(5)
	for _, limit := range []int{1, 2} {
		t.Run(fmt.Sprintf("上限%d件でも健全な予約が返る", limit), func(t *testing.T) {
			due, err := h.ledger.DueBookings(ctx, limit)
			require.NoError(t, err)
			assert.Equal(t, []booking.ID{booking.ID(ok.Booking.ID)}, due)
		})
	}
}

func TestLedger_CreditedAccountsCarrySettlementTime(t *testing.T) {
	ctx := context.Background()
	h := newHarness(250, nil)
	lid := h.createListing(t, 100)
	res, err := h.book(ctx, lid, guest, 1, 2, 100, "")
	require.NoError(t, err)

	h.clock.Set(day(2).Add(14*time.Hour + 30*time.Minute))
	_, err = h.ledger.CompleteIfDue(ctx, booking.ID(res.Booking.ID), host)
	require.NoError(t, err)

	for _, who := range []party.Identity{host, platform} {
		a, err := h.ledger.Balance(ctx, who)
		require.NoError(t, err)
		require.NotNil(t, a.UpdatedAt)
		assert.True(t, h.clock.Now().Equal(*a.UpdatedAt), "%s updated at %s", who, a.UpdatedAt)
	}
}

func TestLedger_NoDoubleBookingUnderConcurrency(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		h := newHarness(250, nil)
		v, err := h.ledger.CreateListing(ctx, host, commands.CreateListingInput{
			PricePerNightMinor: 100, Name: "Loft", Location: "Osaka", Description: "Loft", ImageURI: "https://example.com/l.jpg",
		})
		if err != nil {
			rt.Fatalf("create listing: %v", err)
		}
		lid := listing.ID(v.ID)

		type attempt struct{ from, to int }
		n := rapid.IntRange(2, 16).Draw(rt, "n")
		attempts := make([]attempt, n)
		for i := range attempts {
			from := rapid.IntRange(1, 30).Draw(rt, "from")
			attempts[i] = attempt{from: from, to: from + rapid.IntRange(1, 6).Draw(rt, "nights")}
		}

		var (
			mu  sync.Mutex
			won []attempt
			wg  sync.WaitGroup
		)
		for i, a := range attempts {
			wg.Add(1)
			go func(i int, a attempt) {
				defer wg.Done()
				_, err := h.book(ctx, lid, party.MustIdentity(fmt.Sprintf("guest-%d", i)), a.from, a.to, 100, "")
				if err == nil {
					mu.Lock()
					won = append(won, a)
					mu.Unlock()
					return
				}
				if !errs.Is(err, errs.ErrDatesUnavailable) {
					rt.Errorf("unexpected error: %v", err)
				}
			}(i, a)
		}
		wg.Wait()

		for i := range won {
			for j := i + 1; j < len(won); j++ {
				if won[i].from < won[j].to && won[j].from < won[i].to {
					rt.Fatalf("double booked: %v and %v", won[i], won[j])
				}
			}
		}
		av, err := h.ledger.GetAvailability(ctx, lid, day(0), day(40))
		if err != nil {
			rt.Fatalf("availability: %v", err)
		}
		if len(av.Blocked) != len(won) {
			rt.Fatalf("calendar has %d intervals, %d bookings won", len(av.Blocked), len(won))
		}
	})
}

func TestLedger_ConservationHoldsAcrossOperations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		h := newHarness(rapid.Int64Range(0, 10000).Draw(rt, "fee_rate"), nil)
		price := rapid.Int64Range(1, 50000).Draw(rt, "price")
		v, err := h.ledger.CreateListing(ctx, host, commands.CreateListingInput{
			PricePerNightMinor: price, Name: "Flat", Location: "Sapporo", Description: "Flat", ImageURI: "https://example.com/f.jpg",
		})
		if err != nil {
			rt.Fatalf("create listing: %v", err)
		}
		lid := listing.ID(v.ID)

		var bookings []booking.ID
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.SampledFrom([]string{"book", "cancel", "advance", "complete", "withdraw"}).Draw(rt, "op") {
			case "book":
				from := rapid.IntRange(1, 20).Draw(rt, "from")
				nights := rapid.IntRange(1, 4).Draw(rt, "nights")
				res, err := h.ledger.Book(ctx, commands.BookInput{
					ListingID:    lid,
					Guest:        guest,
					CheckIn:      clock.Today(h.clock).AddDate(0, 0, from),
					CheckOut:     clock.Today(h.clock).AddDate(0, 0, from+nights),
					PaymentMinor: price * int64(nights),
				})
				if err == nil {
					bookings = append(bookings, booking.ID(res.Booking.ID))
				}
			case "cancel":
				if len(bookings) > 0 {
					id := rapid.SampledFrom(bookings).Draw(rt, "booking")
					_, _ = h.ledger.Cancel(ctx, id, guest)
				}
			case "advance":
				h.clock.AddDays(rapid.IntRange(1, 5).Draw(rt, "days"))
			case "complete":
				if len(bookings) > 0 {
					id := rapid.SampledFrom(bookings).Draw(rt, "booking")
					_, _ = h.ledger.CompleteIfDue(ctx, id, stranger)
				}
			case "withdraw":
				bal, err := h.ledger.Balance(ctx, host)
				if err != nil {
					rt.Fatalf("balance: %v", err)
				}
				if bal.BalanceMinor > 0 {
					if _, err := h.ledger.Withdraw(ctx, host, host, bal.BalanceMinor); err != nil {
						rt.Fatalf("withdraw: %v", err)
					}
				}
			}

			tr, err := h.ledger.Treasury(ctx)
			if err != nil {
				rt.Fatalf("treasury: %v", err)
			}
			if !tr.Balanced {
				rt.Fatalf("treasury out of balance after step %d: %+v", i, tr)
			}
			for _, id := range bookings {
				b, err := h.ledger.GetBooking(ctx, id)
				if err != nil {
					rt.Fatalf("get booking: %v", err)
				}
				held := b.Status == string(booking.StatusConfirmed)
				if held != (b.EscrowHeldMinor == b.GrossAmountMinor) || (!held && b.EscrowHeldMinor != 0) {
					rt.Fatalf("booking %d is %s with %d held", b.ID, b.Status, b.EscrowHeldMinor)
				}
			}
		}
	})
}
