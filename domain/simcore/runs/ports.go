package runs

import (
	"context"
	"time"

	"github.com/socialsim/engine/domain/simcore"
)

// RunRepo is the durable-storage port for run lifecycle writes (spec §4.8).
type RunRepo interface {
	CreateRun(ctx context.Context, cfg simcore.RunConfig) (*simcore.Run, error)
	GetRun(ctx context.Context, runID string) (*simcore.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status simcore.RunStatus, completedAt *time.Time) error
}

// MetricsRepo writes final run-level metrics (spec §4.1 step 5, §4.8).
type MetricsRepo interface {
	WriteRunMetrics(ctx context.Context, metrics simcore.RunMetrics) error
}
