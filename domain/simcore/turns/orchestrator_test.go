package turns

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/actions"
	"github.com/socialsim/engine/domain/simcore/feeds"
	"github.com/socialsim/engine/domain/simcore/history"
	"github.com/socialsim/engine/domain/simcore/validate"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRunRepo struct {
	run *simcore.Run
}

func (f *fakeRunRepo) GetRun(ctx context.Context, runID string) (*simcore.Run, error) {
	return f.run, nil
}

type fakePostSource struct {
	corpus []simcore.Post
}

func (f *fakePostSource) ListAllFeedPosts(ctx context.Context) ([]simcore.Post, error) {
	return f.corpus, nil
}

func (f *fakePostSource) ReadFeedPostsByIDs(ctx context.Context, ids []string) ([]simcore.Post, error) {
	byID := make(map[string]simcore.Post, len(f.corpus))
	for _, p := range f.corpus {
		byID[p.PostID] = p
	}
	out := make([]simcore.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSeenTracker struct{}

func (f *fakeSeenTracker) SeenPostIDs(ctx context.Context, runID, agentHandle string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

type fakeFeedWriter struct {
	written []simcore.GeneratedFeed
}

func (f *fakeFeedWriter) WriteGeneratedFeed(ctx context.Context, feed simcore.GeneratedFeed) error {
	f.written = append(f.written, feed)
	return nil
}

type fakePersistence struct {
	calls     int
	meta      simcore.TurnMetadata
	likes     []simcore.GeneratedLike
	comments  []simcore.GeneratedComment
	follows   []simcore.GeneratedFollow
	returnErr error
}

func (f *fakePersistence) WriteTurn(
	ctx context.Context,
	meta simcore.TurnMetadata,
	metrics simcore.TurnMetrics,
	likes []simcore.GeneratedLike,
	comments []simcore.GeneratedComment,
	follows []simcore.GeneratedFollow,
) error {
	f.calls++
	f.meta = meta
	f.likes = likes
	f.comments = comments
	f.follows = follows
	return f.returnErr
}

func likeEveryCandidate(_ context.Context, agent simcore.Agent, candidates []simcore.Post, _ map[string]any) ([]simcore.GeneratedLike, error) {
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

func newActionsPipeline(store history.Store) *actions.Pipeline {
	registry := actions.NewRegistry()
	registry.RegisterLike("all", likeEveryCandidate)
	registry.RegisterComment("none", noComments)
	registry.RegisterFollow("none", noFollows)
	registry.SetDefaultAlgorithm(simcore.ActionLike, "all")
	registry.SetDefaultAlgorithm(simcore.ActionComment, "none")
	registry.SetDefaultAlgorithm(simcore.ActionFollow, "none")
	return actions.NewPipeline(registry, store, validate.New(store))
}

func TestRunTurn_PersistsAccumulatedActionsFromEveryAgent(t *testing.T) {
	run := &simcore.Run{RunID: "run-1", Status: simcore.RunStatusRunning, FeedAlgorithm: "chronological"}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := &fakePostSource{corpus: []simcore.Post{
		{PostID: "p1", AuthorHandle: "@carol", CreatedAt: base},
		{PostID: "p2", AuthorHandle: "@carol", CreatedAt: base.Add(time.Hour)},
	}}
	feedPipeline := feeds.NewPipeline(posts, &fakeSeenTracker{}, &fakeFeedWriter{}, feeds.NewRegistry(), discardLogger())
	store := history.NewMemoryStore()
	actionsPipeline := newActionsPipeline(store)
	persistence := &fakePersistence{}

	orchestrator := NewOrchestrator(&fakeRunRepo{run: run}, feedPipeline, actionsPipeline, persistence, discardLogger())

	agents := []simcore.Agent{{Handle: "@alice"}, {Handle: "@bob"}}
	result, err := orchestrator.RunTurn(context.Background(), "run-1", 0, agents, actions.Config{})
	require.NoError(t, err)

	assert.Equal(t, 1, persistence.calls)
	assert.Len(t, persistence.likes, 4, "2 agents each liking 2 candidate posts")
	assert.Equal(t, 4, result.TotalActions[simcore.ActionLike])
}

func TestRunTurn_RaisesEmptyFeedThresholdWhenTooManyAgentsLackFeeds(t *testing.T) {
	run := &simcore.Run{RunID: "run-1", Status: simcore.RunStatusRunning, FeedAlgorithm: "chronological"}
	posts := &fakePostSource{} // empty corpus: every agent gets an empty feed
	feedPipeline := feeds.NewPipeline(posts, &fakeSeenTracker{}, &fakeFeedWriter{}, feeds.NewRegistry(), discardLogger())
	store := history.NewMemoryStore()
	actionsPipeline := newActionsPipeline(store)
	persistence := &fakePersistence{}

	orchestrator := NewOrchestrator(&fakeRunRepo{run: run}, feedPipeline, actionsPipeline, persistence, discardLogger())

	agents := []simcore.Agent{{Handle: "@alice"}, {Handle: "@bob"}}
	_, err := orchestrator.RunTurn(context.Background(), "run-1", 0, agents, actions.Config{})
	require.Error(t, err)

	var thresholdErr *simcore.EmptyFeedThresholdError
	assert.ErrorAs(t, err, &thresholdErr)
	assert.Equal(t, 0, persistence.calls, "must not persist a turn that failed the threshold check")
}

func TestRunTurn_ReturnsRunNotFoundWhenRunMissing(t *testing.T) {
	feedPipeline := feeds.NewPipeline(&fakePostSource{}, &fakeSeenTracker{}, &fakeFeedWriter{}, feeds.NewRegistry(), discardLogger())
	store := history.NewMemoryStore()
	actionsPipeline := newActionsPipeline(store)
	persistence := &fakePersistence{}

	orchestrator := NewOrchestrator(&fakeRunRepo{run: nil}, feedPipeline, actionsPipeline, persistence, discardLogger())

	_, err := orchestrator.RunTurn(context.Background(), "run-missing", 0, nil, actions.Config{})
	require.Error(t, err)
	var notFound *simcore.RunNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRunTurn_TreatsDuplicateTurnMetadataAsIdempotentSuccess(t *testing.T) {
	run := &simcore.Run{RunID: "run-1", Status: simcore.RunStatusRunning, FeedAlgorithm: "chronological"}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := &fakePostSource{corpus: []simcore.Post{{PostID: "p1", AuthorHandle: "@carol", CreatedAt: base}}}
	feedPipeline := feeds.NewPipeline(posts, &fakeSeenTracker{}, &fakeFeedWriter{}, feeds.NewRegistry(), discardLogger())
	store := history.NewMemoryStore()
	actionsPipeline := newActionsPipeline(store)
	persistence := &fakePersistence{returnErr: simcore.NewDuplicateTurnMetadataError("run-1", 0)}

	orchestrator := NewOrchestrator(&fakeRunRepo{run: run}, feedPipeline, actionsPipeline, persistence, discardLogger())

	agents := []simcore.Agent{{Handle: "@alice"}}
	_, err := orchestrator.RunTurn(context.Background(), "run-1", 0, agents, actions.Config{})
	assert.NoError(t, err)
}
