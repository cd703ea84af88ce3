package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsim/engine/domain/simcore"
)

type fakeRunReader struct {
	run  *simcore.Run
	runs []simcore.Run
}

func (f *fakeRunReader) GetRun(ctx context.Context, runID string) (*simcore.Run, error) {
	return f.run, nil
}

func (f *fakeRunReader) ListRuns(ctx context.Context) ([]simcore.Run, error) {
	return f.runs, nil
}

type fakeTurnMetadataReader struct {
	meta *simcore.TurnMetadata
	list []simcore.TurnMetadata
}

func (f *fakeTurnMetadataReader) GetTurnMetadata(ctx context.Context, runID string, turn int) (*simcore.TurnMetadata, error) {
	return f.meta, nil
}

func (f *fakeTurnMetadataReader) ListTurnMetadata(ctx context.Context, runID string) ([]simcore.TurnMetadata, error) {
	return f.list, nil
}

type fakeTurnDataReader struct {
	feeds    []simcore.GeneratedFeed
	posts    []simcore.Post
	likes    []simcore.GeneratedLike
	comments []simcore.GeneratedComment
	follows  []simcore.GeneratedFollow
}

func (f *fakeTurnDataReader) GetGeneratedFeedsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedFeed, error) {
	return f.feeds, nil
}

func (f *fakeTurnDataReader) ReadFeedPostsByIDs(ctx context.Context, postIDs []string) ([]simcore.Post, error) {
	byID := make(map[string]simcore.Post, len(f.posts))
	for _, p := range f.posts {
		byID[p.PostID] = p
	}
	out := make([]simcore.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeTurnDataReader) GetLikesForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedLike, error) {
	return f.likes, nil
}

func (f *fakeTurnDataReader) GetCommentsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedComment, error) {
	return f.comments, nil
}

func (f *fakeTurnDataReader) GetFollowsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedFollow, error) {
	return f.follows, nil
}

func TestGetTurnData_ReturnsRunNotFoundWhenRunMissing(t *testing.T) {
	svc := NewService(&fakeRunReader{run: nil}, &fakeTurnMetadataReader{}, &fakeTurnDataReader{})

	_, err := svc.GetTurnData(context.Background(), "run-missing", 0)
	require.Error(t, err)
	var notFound *simcore.RunNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGetTurnData_ReturnsNilWhenNoFeedsExistForTurn(t *testing.T) {
	run := &simcore.Run{RunID: "run-1"}
	svc := NewService(&fakeRunReader{run: run}, &fakeTurnMetadataReader{}, &fakeTurnDataReader{feeds: nil})

	data, err := svc.GetTurnData(context.Background(), "run-1", 0)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetTurnData_HydratesFeedsAndActionsGroupedByAgent(t *testing.T) {
	run := &simcore.Run{RunID: "run-1"}
	turnData := &fakeTurnDataReader{
		feeds: []simcore.GeneratedFeed{
			{AgentHandle: "@alice", PostIDs: []string{"p1", "p2"}},
		},
		posts: []simcore.Post{
			{PostID: "p1", URI: "a"},
			{PostID: "p2", URI: "b"},
		},
		likes:    []simcore.GeneratedLike{{AgentHandle: "@alice", PostID: "p1"}},
		comments: []simcore.GeneratedComment{{AgentHandle: "@alice", PostID: "p2"}},
		follows:  []simcore.GeneratedFollow{{AgentHandle: "@alice", UserID: "@bob"}},
	}
	svc := NewService(&fakeRunReader{run: run}, &fakeTurnMetadataReader{}, turnData)

	data, err := svc.GetTurnData(context.Background(), "run-1", 0)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Len(t, data.Feeds["@alice"], 2)
	assert.Len(t, data.Likes["@alice"], 1)
	assert.Len(t, data.Comments["@alice"], 1)
	assert.Len(t, data.Follows["@alice"], 1)
}

func TestGetRun_DelegatesToRunReader(t *testing.T) {
	run := &simcore.Run{RunID: "run-1"}
	svc := NewService(&fakeRunReader{run: run}, &fakeTurnMetadataReader{}, &fakeTurnDataReader{})

	got, err := svc.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Same(t, run, got)
}

func TestListTurnMetadata_DelegatesToMetadataReader(t *testing.T) {
	list := []simcore.TurnMetadata{{RunID: "run-1", TurnNumber: 0}, {RunID: "run-1", TurnNumber: 1}}
	svc := NewService(&fakeRunReader{}, &fakeTurnMetadataReader{list: list}, &fakeTurnDataReader{})

	got, err := svc.ListTurnMetadata(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, list, got)
}
