// Package history implements the run-scoped action-history store that the
// invariant validator and action recorder consult to reject within-turn
// duplicates and across-turn replays (spec §3 ActionHistoryStore, §4.7).
package history

import "context"

// Store records which (agent, target) pairs have already been accepted
// for a run, across the three action kinds. A Store is created at run
// start and discarded at run end; it carries no cross-run state.
type Store interface {
	HasLiked(ctx context.Context, runID, agentHandle, postID string) (bool, error)
	HasCommented(ctx context.Context, runID, agentHandle, postID string) (bool, error)
	HasFollowed(ctx context.Context, runID, agentHandle, userID string) (bool, error)

	RecordLike(ctx context.Context, runID, agentHandle, postID string) error
	RecordComment(ctx context.Context, runID, agentHandle, postID string) error
	RecordFollow(ctx context.Context, runID, agentHandle, userID string) error

	// Clear drops all state for a run. The run orchestrator calls it when
	// ExecuteRun returns, whether the run completed or failed.
	Clear(ctx context.Context, runID string) error
}

type pairKey struct {
	agentHandle string
	target      string
}
