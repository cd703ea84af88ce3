package repo

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/pkg/logger"
)

// RunRepository is the bun-backed implementation of runs.RunRepo and
// turns.RunRepo (spec §4.8).
type RunRepository struct {
	db  bun.IDB
	log *slog.Logger
}

func NewRunRepository(db bun.IDB, log *slog.Logger) *RunRepository {
	return &RunRepository{db: db, log: log.With(logger.Scope("simcore.repo.runs"))}
}

func (r *RunRepository) CreateRun(ctx context.Context, cfg simcore.RunConfig) (*simcore.Run, error) {
	metricKeys := cfg.MetricKeys
	if len(metricKeys) == 0 {
		metricKeys = simcore.DefaultMetricKeys
	}

	now := time.Now()
	model := &runModel{
		RunID:               uuid.NewString(),
		CreatedAt:           now,
		TotalTurns:          cfg.NumTurns,
		TotalAgents:         cfg.NumAgents,
		FeedAlgorithm:       cfg.FeedAlgorithm,
		FeedAlgorithmConfig: cfg.FeedAlgorithmConfig,
		MetricKeys:          metricKeys,
		StartedAt:           now,
		Status:              string(simcore.RunStatusRunning),
	}

	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		r.log.Error("failed to create run", logger.Error(err))
		return nil, simcore.NewRunCreationError(err)
	}

	return toRun(model), nil
}

func (r *RunRepository) GetRun(ctx context.Context, runID string) (*simcore.Run, error) {
	model := new(runModel)
	err := r.db.NewSelect().Model(model).Where("run_id = ?", runID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return toRun(model), nil
}

func (r *RunRepository) UpdateRunStatus(ctx context.Context, runID string, status simcore.RunStatus, completedAt *time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*runModel)(nil)).
		Set("status = ?", string(status)).
		Set("completed_at = ?", completedAt).
		Where("run_id = ?", runID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return simcore.NewRunNotFoundError(runID)
	}
	return nil
}

func (r *RunRepository) WriteRunMetrics(ctx context.Context, metrics simcore.RunMetrics) error {
	model := &runMetricsModel{RunID: metrics.RunID, Metrics: metrics.Metrics, CreatedAt: metrics.CreatedAt}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (run_id) DO UPDATE").
		Set("metrics = EXCLUDED.metrics").
		Exec(ctx)
	return err
}

func (r *RunRepository) ListRuns(ctx context.Context) ([]simcore.Run, error) {
	var models []runModel
	err := r.db.NewSelect().Model(&models).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	runs := make([]simcore.Run, len(models))
	for i := range models {
		runs[i] = *toRun(&models[i])
	}
	return runs, nil
}

func toRun(m *runModel) *simcore.Run {
	return &simcore.Run{
		RunID:               m.RunID,
		CreatedAt:           m.CreatedAt,
		TotalTurns:          m.TotalTurns,
		TotalAgents:         m.TotalAgents,
		FeedAlgorithm:       m.FeedAlgorithm,
		FeedAlgorithmConfig: m.FeedAlgorithmConfig,
		MetricKeys:          m.MetricKeys,
		StartedAt:           m.StartedAt,
		Status:              simcore.RunStatus(m.Status),
		CompletedAt:         m.CompletedAt,
	}
}
