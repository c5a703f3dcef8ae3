package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/phrsdk/internal/database"
)

// RunMigrations applies the pending sandbox migrations found below migrationsRoot for the
// configured driver. The memory driver has no schema and is left alone.
func RunMigrations(
	ctx context.Context,
	logger *slog.Logger,
	cfg database.Config,
	migrationsRoot string,
) error {
	if cfg.Driver == database.DriverMemory {
		logger.Info("memory driver selected, nothing to migrate")
		return nil
	}

	dir := database.MigrationsDir(migrationsRoot, cfg.Driver)
	logger.Info("running database migrations",
		slog.String("driver", cfg.Driver),
		slog.String("dir", dir),
	)

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := database.Migrate(db, cfg.Driver, dir); err != nil {
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}
