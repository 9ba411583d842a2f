package postgres

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"

	"stay-ledger/internal/pkg/errs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations that goose has not recorded yet.
// A session advisory lock serialises replicas that start at the same time.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return errs.Wrap(err, "open embedded migrations")
	}
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return errs.Wrap(err, "create migration locker")
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys, goose.WithSessionLocker(locker))
	if err != nil {
		return errs.Wrap(err, "create migration provider")
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return errs.Wrap(err, "apply migrations")
	}
	for _, r := range results {
		logger.Info("Migration applied",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	return nil
}
