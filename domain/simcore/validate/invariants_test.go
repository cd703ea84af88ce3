package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/history"
)

func TestInvariants_Check_RejectsWithinTurnDuplicateLike(t *testing.T) {
	v := New(history.NewMemoryStore())

	likes := []simcore.GeneratedLike{
		{AgentHandle: "@a", PostID: "post-1"},
		{AgentHandle: "@a", PostID: "post-1"},
	}

	_, err := v.Check(context.Background(), "run-1", "@a", likes, nil, nil)
	require.Error(t, err)

	var violation *simcore.InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "duplicate", violation.Kind)
	assert.Equal(t, "like", violation.Action)
	assert.Equal(t, []string{"post-1"}, violation.Targets)
}

func TestInvariants_Check_RejectsAcrossTurnReplay(t *testing.T) {
	store := history.NewMemoryStore()
	v := New(store)
	ctx := context.Background()

	require.NoError(t, store.RecordLike(ctx, "run-1", "@a", "post-1"))

	_, err := v.Check(ctx, "run-1", "@a", []simcore.GeneratedLike{{AgentHandle: "@a", PostID: "post-1"}}, nil, nil)
	require.Error(t, err)

	var violation *simcore.InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "replay", violation.Kind)
	assert.Equal(t, "like", violation.Action)
}

func TestInvariants_Check_AcceptsDistinctTargets(t *testing.T) {
	v := New(history.NewMemoryStore())

	targets, err := v.Check(context.Background(), "run-1", "@a",
		[]simcore.GeneratedLike{{AgentHandle: "@a", PostID: "post-1"}, {AgentHandle: "@a", PostID: "post-2"}},
		[]simcore.GeneratedComment{{AgentHandle: "@a", PostID: "post-3"}},
		[]simcore.GeneratedFollow{{AgentHandle: "@a", UserID: "@b"}},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"post-1", "post-2"}, targets.LikePostIDs)
	assert.Equal(t, []string{"post-3"}, targets.CommentPostIDs)
	assert.Equal(t, []string{"@b"}, targets.FollowUserIDs)
}
