package feeds

import (
	"context"

	"github.com/socialsim/engine/domain/simcore"
)

// PostSource is the read-only port over the candidate post corpus
// (spec §4.4: "known performance hotspot flagged for optimization" —
// callers load the full corpus and filter in-process rather than
// pushing filters into storage).
type PostSource interface {
	ListAllFeedPosts(ctx context.Context) ([]simcore.Post, error)
	ReadFeedPostsByIDs(ctx context.Context, postIDs []string) ([]simcore.Post, error)
}

// SeenTracker answers which post IDs have already appeared in a
// previous turn's generated feed for an agent, so they are excluded
// from future candidate lists (spec §4.4 step 1).
type SeenTracker interface {
	SeenPostIDs(ctx context.Context, runID, agentHandle string) (map[string]struct{}, error)
}

// FeedWriter persists a generated feed, upserting by
// (agent_handle, run_id, turn_number) (spec §4.4 step 3, §4.8).
type FeedWriter interface {
	WriteGeneratedFeed(ctx context.Context, feed simcore.GeneratedFeed) error
}
