// Package main is the entry point for the simulation engine process.
package main

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/socialsim/engine/domain/simcore/actions"
	"github.com/socialsim/engine/domain/simcore/feeds"
	"github.com/socialsim/engine/domain/simcore/history"
	"github.com/socialsim/engine/domain/simcore/query"
	"github.com/socialsim/engine/domain/simcore/repo"
	"github.com/socialsim/engine/domain/simcore/runs"
	"github.com/socialsim/engine/domain/simcore/turns"
	"github.com/socialsim/engine/domain/simcore/validate"
	"github.com/socialsim/engine/internal/config"
	"github.com/socialsim/engine/internal/database"
	"github.com/socialsim/engine/internal/migrate"
	"github.com/socialsim/engine/pkg/llmpolicy"
	"github.com/socialsim/engine/pkg/logger"
)

func main() {
	// Order matters: .env.local overrides .env
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		fx.Provide(logger.NewLogger),
		config.Module,
		database.Module,
		migrate.Module,
		llmpolicy.Module,

		history.Module,
		validate.Module,
		feeds.Module,
		actions.Module,
		turns.Module,
		runs.Module,
		repo.Module,
		query.Module,

		fx.Invoke(runMigrationsOnBoot),
	).Run()
}

// runMigrationsOnBoot applies pending schema migrations before anything
// else in the graph starts serving work.
func runMigrationsOnBoot(lc fx.Lifecycle, m *migrate.Migrator) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.Up(ctx)
		},
	})
}
