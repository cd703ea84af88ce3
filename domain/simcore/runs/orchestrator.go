package runs

import (
	"context"
	"log/slog"
	"time"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/actions"
	"github.com/socialsim/engine/domain/simcore/history"
	"github.com/socialsim/engine/domain/simcore/turns"
	"github.com/socialsim/engine/domain/simcore/validate"
	"github.com/socialsim/engine/pkg/logger"
)

// Orchestrator drives a RunConfig to a terminal Run (spec §4.1).
type Orchestrator struct {
	runRepo     RunRepo
	metricsRepo MetricsRepo
	factory     AgentFactory
	history     history.Store
	turns       *turns.Orchestrator
	actionCfg   actions.Config
	log         *slog.Logger
}

func NewOrchestrator(
	runRepo RunRepo,
	metricsRepo MetricsRepo,
	factory AgentFactory,
	store history.Store,
	turnOrchestrator *turns.Orchestrator,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		runRepo:     runRepo,
		metricsRepo: metricsRepo,
		factory:     factory,
		history:     store,
		turns:       turnOrchestrator,
		log:         log.With(logger.Scope("simcore.runs")),
	}
}

// ExecuteRun turns a RunConfig into a durable Run in a terminal state,
// or fails explicitly (spec §4.1).
func (o *Orchestrator) ExecuteRun(ctx context.Context, cfg simcore.RunConfig) (*simcore.Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	run, err := o.runRepo.CreateRun(ctx, cfg)
	if err != nil {
		return nil, simcore.NewSimulationRunFailure("", err)
	}
	defer func() {
		if err := o.history.Clear(ctx, run.RunID); err != nil {
			o.log.Warn("failed to clear history store at run end", slog.String("run_id", run.RunID), logger.Error(err))
		}
	}()

	agents, err := o.factory.MaterializeAgents(ctx, cfg.NumAgents)
	if err != nil {
		o.failRun(ctx, run.RunID, err)
		return nil, simcore.NewSimulationRunFailure(run.RunID, err)
	}

	actionCfg := actions.Config{AlgorithmConfig: cfg.FeedAlgorithmConfig}
	if cfg.ActionAlgorithms != nil {
		actionCfg.LikeAlgorithm = cfg.ActionAlgorithms[simcore.ActionLike]
		actionCfg.CommentAlgorithm = cfg.ActionAlgorithms[simcore.ActionComment]
		actionCfg.FollowAlgorithm = cfg.ActionAlgorithms[simcore.ActionFollow]
	}

	var turnTotals []map[simcore.ActionKind]int
	for turnNumber := 0; turnNumber < cfg.NumTurns; turnNumber++ {
		result, err := o.turns.RunTurn(ctx, run.RunID, turnNumber, agents, actionCfg)
		if err != nil {
			o.failRun(ctx, run.RunID, err)
			return nil, simcore.NewSimulationRunFailure(run.RunID, err)
		}
		turnTotals = append(turnTotals, result.TotalActions)
	}

	metricKeys := cfg.MetricKeys
	if len(metricKeys) == 0 {
		metricKeys = simcore.DefaultMetricKeys
	}
	metrics, err := computeRunMetrics(metricKeys, turnTotals)
	if err != nil {
		o.failRun(ctx, run.RunID, err)
		return nil, simcore.NewSimulationRunFailure(run.RunID, err)
	}

	if err := o.metricsRepo.WriteRunMetrics(ctx, simcore.RunMetrics{RunID: run.RunID, Metrics: metrics, CreatedAt: time.Now()}); err != nil {
		o.failRun(ctx, run.RunID, err)
		return nil, simcore.NewSimulationRunFailure(run.RunID, err)
	}

	if err := o.UpdateRunStatus(ctx, run, simcore.RunStatusCompleted); err != nil {
		return nil, simcore.NewSimulationRunFailure(run.RunID, err)
	}

	completed := time.Now()
	run.Status = simcore.RunStatusCompleted
	run.CompletedAt = &completed
	return run, nil
}

// UpdateRunStatus applies a lifecycle transition, retrying the
// underlying write up to StatusUpdateMaxRetries times with exponential
// backoff (spec §4.1).
func (o *Orchestrator) UpdateRunStatus(ctx context.Context, run *simcore.Run, target simcore.RunStatus) error {
	if err := validate.CheckTransition(run.RunID, run.Status, target); err != nil {
		return err
	}

	var completedAt *time.Time
	if target == simcore.RunStatusCompleted || target == simcore.RunStatusFailed {
		now := time.Now()
		completedAt = &now
	}

	err := retryStatusUpdate(ctx, func(ctx context.Context) error {
		return o.runRepo.UpdateRunStatus(ctx, run.RunID, target, completedAt)
	})
	if err != nil {
		if target != simcore.RunStatusFailed {
			_ = o.runRepo.UpdateRunStatus(ctx, run.RunID, simcore.RunStatusFailed, completedAt)
		}
		return simcore.NewRunStatusUpdateError(run.RunID, target, err)
	}

	run.Status = target
	run.CompletedAt = completedAt
	return nil
}

// failRun attempts a best-effort transition to FAILED; a failure here
// must never mask the original cause (spec §4.1 Failure policy).
func (o *Orchestrator) failRun(ctx context.Context, runID string, cause error) {
	run := &simcore.Run{RunID: runID, Status: simcore.RunStatusRunning}
	if err := o.UpdateRunStatus(ctx, run, simcore.RunStatusFailed); err != nil {
		o.log.Error("failed to transition run to FAILED after error",
			slog.String("run_id", runID), logger.Error(err), slog.String("original_cause", cause.Error()))
	}
}

// retryStatusUpdate retries fn unconditionally, unlike pkg/retry.Do which
// only retries errors that opt in via the Retryable interface — status
// writes must retry on any failure per spec §4.1's "2^attempt seconds"
// schedule (1s, 2s, 4s for the default budget of 3 retries after the
// first attempt).
func retryStatusUpdate(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	maxAttempts := simcore.StatusUpdateMaxRetries + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(ctx); err != nil {
			lastErr = err
			if attempt == maxAttempts {
				break
			}
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		return nil
	}
	return lastErr
}

func computeRunMetrics(keys []string, turnTotals []map[simcore.ActionKind]int) (map[string]float64, error) {
	var totalLikes, totalComments, totalFollows float64
	for _, t := range turnTotals {
		totalLikes += float64(t[simcore.ActionLike])
		totalComments += float64(t[simcore.ActionComment])
		totalFollows += float64(t[simcore.ActionFollow])
	}

	available := map[string]float64{
		"total_likes":    totalLikes,
		"total_comments": totalComments,
		"total_follows":  totalFollows,
		"total_turns":    float64(len(turnTotals)),
	}

	metrics := make(map[string]float64, len(keys))
	for _, key := range keys {
		value, ok := available[key]
		if !ok {
			return nil, simcore.NewMetricsComputationError(key, nil)
		}
		metrics[key] = value
	}
	return metrics, nil
}
