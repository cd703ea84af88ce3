// Package turns implements the per-turn orchestration step: feed
// generation, per-agent action generation, invariant enforcement, and
// atomic persistence of turn metadata and metrics (spec §4.3).
package turns

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/actions"
	"github.com/socialsim/engine/domain/simcore/feeds"
	"github.com/socialsim/engine/pkg/logger"
	"github.com/socialsim/engine/pkg/tracing"
)

// RunRepo is the narrow run-lookup port the turn orchestrator needs
// (spec §4.3 step 1).
type RunRepo interface {
	GetRun(ctx context.Context, runID string) (*simcore.Run, error)
}

// Persistence is the atomic turn-write port (spec §4.3 step 6, §4.8). A
// single call writes turn metadata, turn metrics, and every accepted
// action generated during the turn under one transaction.
type Persistence interface {
	WriteTurn(
		ctx context.Context,
		meta simcore.TurnMetadata,
		metrics simcore.TurnMetrics,
		likes []simcore.GeneratedLike,
		comments []simcore.GeneratedComment,
		follows []simcore.GeneratedFollow,
	) error
}

// Orchestrator runs a single turn for every agent in a run.
type Orchestrator struct {
	runs        RunRepo
	feeds       *feeds.Pipeline
	actionsPipe *actions.Pipeline
	persistence Persistence
	log         *slog.Logger
}

func NewOrchestrator(runs RunRepo, feedPipeline *feeds.Pipeline, actionsPipeline *actions.Pipeline, persistence Persistence, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		runs:        runs,
		feeds:       feedPipeline,
		actionsPipe: actionsPipeline,
		persistence: persistence,
		log:         log.With(logger.Scope("simcore.turns")),
	}
}

// RunTurn performs the full per-turn sequence described in spec §4.3.
func (o *Orchestrator) RunTurn(
	ctx context.Context,
	runID string,
	turnNumber int,
	agents []simcore.Agent,
	actionConfig actions.Config,
) (simcore.TurnResult, error) {
	ctx, span := tracing.Start(ctx, "simcore.run_turn",
		attribute.String("simcore.run_id", runID),
		attribute.Int("simcore.turn_number", turnNumber),
	)
	defer span.End()

	start := time.Now()

	run, err := o.runs.GetRun(ctx, runID)
	if err != nil {
		return simcore.TurnResult{}, err
	}
	if run == nil {
		return simcore.TurnResult{}, simcore.NewRunNotFoundError(runID)
	}

	feedsByAgent, err := o.feeds.GenerateAll(ctx, runID, turnNumber, agents, run.FeedAlgorithm, run.FeedAlgorithmConfig)
	if err != nil {
		return simcore.TurnResult{}, err
	}

	withoutFeeds := 0
	for _, agent := range agents {
		if _, ok := feedsByAgent[agent.Handle]; !ok {
			withoutFeeds++
		}
	}
	if len(agents) > 0 && float64(withoutFeeds)/float64(len(agents)) > simcore.EmptyFeedThreshold {
		return simcore.TurnResult{}, simcore.NewEmptyFeedThresholdError(runID, turnNumber, withoutFeeds, len(agents))
	}

	totals := map[simcore.ActionKind]int{
		simcore.ActionLike:    0,
		simcore.ActionComment: 0,
		simcore.ActionFollow:  0,
	}
	var allLikes []simcore.GeneratedLike
	var allComments []simcore.GeneratedComment
	var allFollows []simcore.GeneratedFollow

	for _, agent := range agents {
		feed, ok := feedsByAgent[agent.Handle]
		if !ok || len(feed) == 0 {
			continue
		}

		result, err := o.actionsPipe.Run(ctx, runID, agent, feed, actionConfig)
		if err != nil {
			return simcore.TurnResult{}, err
		}

		totals[simcore.ActionLike] += len(result.Likes)
		totals[simcore.ActionComment] += len(result.Comments)
		totals[simcore.ActionFollow] += len(result.Follows)
		allLikes = append(allLikes, result.Likes...)
		allComments = append(allComments, result.Comments...)
		allFollows = append(allFollows, result.Follows...)
	}

	now := time.Now()
	meta := simcore.TurnMetadata{RunID: runID, TurnNumber: turnNumber, TotalActions: totals, CreatedAt: now}
	metrics := simcore.TurnMetrics{
		RunID:      runID,
		TurnNumber: turnNumber,
		Metrics: map[string]float64{
			"total_likes":    float64(totals[simcore.ActionLike]),
			"total_comments": float64(totals[simcore.ActionComment]),
			"total_follows":  float64(totals[simcore.ActionFollow]),
		},
		CreatedAt: now,
	}

	if err := o.persistence.WriteTurn(ctx, meta, metrics, allLikes, allComments, allFollows); err != nil {
		var dup *simcore.DuplicateTurnMetadataError
		if !errors.As(err, &dup) {
			return simcore.TurnResult{}, err
		}
		o.log.Warn("turn metadata already persisted, treating as idempotent success",
			slog.String("run_id", runID), slog.Int("turn_number", turnNumber))
	}

	return simcore.TurnResult{
		TurnNumber:      turnNumber,
		TotalActions:    totals,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
