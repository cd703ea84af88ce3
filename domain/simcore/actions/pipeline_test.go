package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/history"
	"github.com/socialsim/engine/domain/simcore/validate"
)

func feedPost(id, author string) simcore.Post {
	return simcore.Post{PostID: id, AuthorHandle: author, CreatedAt: time.Now()}
}

func likeAllCandidates(_ context.Context, agent simcore.Agent, candidates []simcore.Post, _ map[string]any) ([]simcore.GeneratedLike, error) {
	likes := make([]simcore.GeneratedLike, 0, len(candidates))
	for _, c := range candidates {
		likes = append(likes, simcore.GeneratedLike{AgentHandle: agent.Handle, PostID: c.PostID})
	}
	return likes, nil
}

func noComments(_ context.Context, _ simcore.Agent, _ []simcore.Post, _ map[string]any) ([]simcore.GeneratedComment, error) {
	return nil, nil
}

func noFollows(_ context.Context, _ simcore.Agent, _ []simcore.Post, _ map[string]any) ([]simcore.GeneratedFollow, error) {
	return nil, nil
}

func newTestPipeline(store history.Store) *Pipeline {
	registry := NewRegistry()
	registry.RegisterLike("all", likeAllCandidates)
	registry.RegisterComment("none", noComments)
	registry.RegisterFollow("none", noFollows)
	registry.SetDefaultAlgorithm(simcore.ActionLike, "all")
	registry.SetDefaultAlgorithm(simcore.ActionComment, "none")
	registry.SetDefaultAlgorithm(simcore.ActionFollow, "none")
	return NewPipeline(registry, store, validate.New(store))
}

func TestPipeline_Run_ExcludesAlreadyLikedPostsFromCandidates(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.RecordLike(ctx, "run-1", "@alice", "already-liked"))

	pipeline := newTestPipeline(store)
	feed := []simcore.Post{feedPost("already-liked", "@bob"), feedPost("fresh", "@bob")}

	result, err := pipeline.Run(ctx, "run-1", simcore.Agent{Handle: "@alice"}, feed, Config{})
	require.NoError(t, err)
	require.Len(t, result.Likes, 1)
	assert.Equal(t, "fresh", result.Likes[0].PostID)
}

func TestPipeline_Run_RejectsWithinTurnDuplicateAndRecordsNothing(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	registry := NewRegistry()
	duplicating := func(_ context.Context, agent simcore.Agent, candidates []simcore.Post, _ map[string]any) ([]simcore.GeneratedLike, error) {
		return []simcore.GeneratedLike{
			{AgentHandle: agent.Handle, PostID: "post-1"},
			{AgentHandle: agent.Handle, PostID: "post-1"},
		}, nil
	}
	registry.RegisterLike("dup", duplicating)
	registry.RegisterComment("none", noComments)
	registry.RegisterFollow("none", noFollows)
	registry.SetDefaultAlgorithm(simcore.ActionLike, "dup")
	registry.SetDefaultAlgorithm(simcore.ActionComment, "none")
	registry.SetDefaultAlgorithm(simcore.ActionFollow, "none")

	pipeline := NewPipeline(registry, store, validate.New(store))
	feed := []simcore.Post{feedPost("post-1", "@bob")}

	_, err := pipeline.Run(ctx, "run-1", simcore.Agent{Handle: "@alice"}, feed, Config{})
	require.Error(t, err)

	liked, err := store.HasLiked(ctx, "run-1", "@alice", "post-1")
	require.NoError(t, err)
	assert.False(t, liked, "history must not record rejected actions")
}

func TestPipeline_Run_RecordsAcceptedActionsIntoHistory(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	pipeline := newTestPipeline(store)
	feed := []simcore.Post{feedPost("post-1", "@bob")}

	_, err := pipeline.Run(ctx, "run-1", simcore.Agent{Handle: "@alice"}, feed, Config{})
	require.NoError(t, err)

	liked, err := store.HasLiked(ctx, "run-1", "@alice", "post-1")
	require.NoError(t, err)
	assert.True(t, liked)
}
