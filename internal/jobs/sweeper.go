package jobs

import (
	"context"
	"log/slog"

	"stay-ledger/internal/domain/booking"
	"stay-ledger/internal/domain/party"
	"stay-ledger/internal/usecase/queries"
)

// SystemActor is recorded as the actor of completions the sweeper performs.
var SystemActor = party.MustIdentity("system:settlement-sweeper")

// Settler is the part of the ledger the sweeper drives.
type Settler interface {
	DueBookings(ctx context.Context, limit int) ([]booking.ID, error)
	CompleteIfDue(ctx context.Context, id booking.ID, actor party.Identity) (*queries.BookingView, error)
}

type SweepReport struct {
	Due       int
	Completed int
	Failed    int
}

// SettlementSweeper completes Confirmed bookings whose check-out has been
// reached. CompleteIfDue is idempotent, so overlapping sweeps or a client
// completing the same booking concurrently are harmless.
type SettlementSweeper struct {
	ledger Settler
	batch  int
	logger *slog.Logger
}

func NewSettlementSweeper(ledger Settler, batch int, logger *slog.Logger) *SettlementSweeper {
	if batch <= 0 {
		batch = 100
	}
	return &SettlementSweeper{ledger: ledger, batch: batch, logger: logger}
}

// Sweep processes one batch. A booking that fails is logged and left for the
// next run; there is no retry within a run.
func (s *SettlementSweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	ids, err := s.ledger.DueBookings(ctx, s.batch)
	if err != nil {
		return report, err
	}
	report.Due = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := s.ledger.CompleteIfDue(ctx, id, SystemActor); err != nil {
			report.Failed++
			s.logger.Warn("Failed to settle booking",
				slog.Int64("booking_id", id.Int64()),
				slog.String("error", err.Error()))
			continue
		}
		report.Completed++
	}
	return report, nil
}
