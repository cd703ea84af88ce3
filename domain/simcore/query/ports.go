// Package query implements the read-only external surface over
// completed and in-flight runs (spec §4.9).
package query

import (
	"context"

	"github.com/socialsim/engine/domain/simcore"
)

// RunReader is the read-only run lookup port.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*simcore.Run, error)
	ListRuns(ctx context.Context) ([]simcore.Run, error)
}

// TurnMetadataReader reads persisted turn metadata.
type TurnMetadataReader interface {
	GetTurnMetadata(ctx context.Context, runID string, turn int) (*simcore.TurnMetadata, error)
	ListTurnMetadata(ctx context.Context, runID string) ([]simcore.TurnMetadata, error)
}

// TurnDataReader hydrates the full per-turn read view: generated feeds
// and the merged per-action records (spec §4.9 GetTurnData).
type TurnDataReader interface {
	GetGeneratedFeedsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedFeed, error)
	ReadFeedPostsByIDs(ctx context.Context, postIDs []string) ([]simcore.Post, error)
	GetLikesForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedLike, error)
	GetCommentsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedComment, error)
	GetFollowsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedFollow, error)
}
