//go:build unit

package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/jobs"
	"stay-ledger/internal/pkg/config"
	"stay-ledger/internal/pkg/errs"
	"stay-ledger/internal/usecase/queries"
	usecasemock "stay-ledger/tests/mock/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSettlementSweeper_Sweep(t *testing.T) {
	t.Run("completes every due booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := usecasemock.NewMockLedger(ctrl)

		ledger.EXPECT().DueBookings(gomock.Any(), 50).Return([]booking.ID{1, 2}, nil)
		ledger.EXPECT().CompleteIfDue(gomock.Any(), booking.ID(1), jobs.SystemActor).Return(&queries.BookingView{ID: 1}, nil)
		ledger.EXPECT().CompleteIfDue(gomock.Any(), booking.ID(2), jobs.SystemActor).Return(&queries.BookingView{ID: 2}, nil)

		report, err := jobs.NewSettlementSweeper(ledger, 50, discardLogger()).Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, jobs.SweepReport{Due: 2, Completed: 2}, report)
	})

	t.Run("a failed booking does not stop the batch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := usecasemock.NewMockLedger(ctrl)

		ledger.EXPECT().DueBookings(gomock.Any(), 100).Return([]booking.ID{7, 8}, nil)
		ledger.EXPECT().CompleteIfDue(gomock.Any(), booking.ID(7), jobs.SystemActor).Return(nil, errs.ErrEntityHalted)
		ledger.EXPECT().CompleteIfDue(gomock.Any(), booking.ID(8), jobs.SystemActor).Return(&queries.BookingView{ID: 8}, nil)

		report, err := jobs.NewSettlementSweeper(ledger, 0, discardLogger()).Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, jobs.SweepReport{Due: 2, Completed: 1, Failed: 1}, report)
	})

	t.Run("listing due bookings fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := usecasemock.NewMockLedger(ctrl)
		boom := errors.New("store unavailable")

		ledger.EXPECT().DueBookings(gomock.Any(), 10).Return(nil, boom)

		_, err := jobs.NewSettlementSweeper(ledger, 10, discardLogger()).Sweep(context.Background())

		assert.ErrorIs(t, err, boom)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := usecasemock.NewMockLedger(ctrl)
		ctx, cancel := context.WithCancel(context.Background())

		ledger.EXPECT().DueBookings(gomock.Any(), 10).Return([]booking.ID{1, 2}, nil)
		ledger.EXPECT().CompleteIfDue(gomock.Any(), booking.ID(1), jobs.SystemActor).
			DoAndReturn(func(context.Context, booking.ID, party.Identity) (*queries.BookingView, error) {
				cancel()
				return &queries.BookingView{ID: 1}, nil
			})

		report, err := jobs.NewSettlementSweeper(ledger, 10, discardLogger()).Sweep(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, report.Completed)
	})
}

func TestScheduler(t *testing.T) {
	t.Run("rejects an invalid schedule", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sweeper := jobs.NewSettlementSweeper(usecasemock.NewMockLedger(ctrl), 10, discardLogger())

		_, err := jobs.NewScheduler(config.SweeperConfig{Schedule: "every now and then"}, sweeper, discardLogger())

		assert.Error(t, err)
	})

	t.Run("manual run settles and recovers from panics", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := usecasemock.NewMockLedger(ctrl)
		sweeper := jobs.NewSettlementSweeper(ledger, 10, discardLogger())
		s, err := jobs.NewScheduler(config.SweeperConfig{Schedule: "0 */5 * * * *"}, sweeper, discardLogger())
		require.NoError(t, err)

		ledger.EXPECT().DueBookings(gomock.Any(), 10).DoAndReturn(func(context.Context, int) ([]booking.ID, error) {
			panic("broken store")
		})

		assert.NotPanics(t, s.SettleDueBookings)
	})

	t.Run("start and stop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sweeper := jobs.NewSettlementSweeper(usecasemock.NewMockLedger(ctrl), 10, discardLogger())
		s, err := jobs.NewScheduler(config.SweeperConfig{Schedule: "0 0 3 * * *"}, sweeper, discardLogger())
		require.NoError(t, err)

		s.Start()
		require.NoError(t, s.Stop(context.Background()))
	})
}
