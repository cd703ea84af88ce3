package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RecordAndHasRoundTripPerKind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.RecordLike(ctx, "run-1", "@alice", "post-1"))
	require.NoError(t, store.RecordComment(ctx, "run-1", "@alice", "post-2"))
	require.NoError(t, store.RecordFollow(ctx, "run-1", "@alice", "@bob"))

	liked, err := store.HasLiked(ctx, "run-1", "@alice", "post-1")
	require.NoError(t, err)
	assert.True(t, liked)

	commented, err := store.HasCommented(ctx, "run-1", "@alice", "post-2")
	require.NoError(t, err)
	assert.True(t, commented)

	followed, err := store.HasFollowed(ctx, "run-1", "@alice", "@bob")
	require.NoError(t, err)
	assert.True(t, followed)

	// A like recorded under one kind must not leak into another kind's check.
	commentedForLikeTarget, err := store.HasCommented(ctx, "run-1", "@alice", "post-1")
	require.NoError(t, err)
	assert.False(t, commentedForLikeTarget)
}

func TestMemoryStore_IsolatesByRun(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.RecordLike(ctx, "run-1", "@alice", "post-1"))

	liked, err := store.HasLiked(ctx, "run-2", "@alice", "post-1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestMemoryStore_IsolatesByAgentHandle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.RecordLike(ctx, "run-1", "@alice", "post-1"))

	liked, err := store.HasLiked(ctx, "run-1", "@bob", "post-1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestMemoryStore_ClearDropsAllStateForRun(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.RecordLike(ctx, "run-1", "@alice", "post-1"))
	require.NoError(t, store.RecordComment(ctx, "run-1", "@alice", "post-2"))
	require.NoError(t, store.RecordFollow(ctx, "run-1", "@alice", "@bob"))

	require.NoError(t, store.Clear(ctx, "run-1"))

	liked, err := store.HasLiked(ctx, "run-1", "@alice", "post-1")
	require.NoError(t, err)
	assert.False(t, liked)

	commented, err := store.HasCommented(ctx, "run-1", "@alice", "post-2")
	require.NoError(t, err)
	assert.False(t, commented)

	followed, err := store.HasFollowed(ctx, "run-1", "@alice", "@bob")
	require.NoError(t, err)
	assert.False(t, followed)
}
