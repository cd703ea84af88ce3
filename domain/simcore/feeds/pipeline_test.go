package feeds

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsim/engine/domain/simcore"
)

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

type fakeSeenTracker struct {
	seen map[string]map[string]struct{} // agentHandle -> postID set
}

func (f *fakeSeenTracker) SeenPostIDs(ctx context.Context, runID, agentHandle string) (map[string]struct{}, error) {
	if f.seen == nil {
		return map[string]struct{}{}, nil
	}
	return f.seen[agentHandle], nil
}

type fakeFeedWriter struct {
	written []simcore.GeneratedFeed
}

func (f *fakeFeedWriter) WriteGeneratedFeed(ctx context.Context, feed simcore.GeneratedFeed) error {
	f.written = append(f.written, feed)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authoredPost(id, uri string, createdAt time.Time, author string) simcore.Post {
	p := post(id, uri, createdAt)
	p.AuthorHandle = author
	return p
}

func TestPipeline_GenerateAll_ExcludesSelfAuthoredAndSeenPosts(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := &fakePostSource{corpus: []simcore.Post{
		authoredPost("own-post", "own", base, "@alice"),
		authoredPost("seen-post", "seen", base, "@bob"),
		authoredPost("fresh-post", "fresh", base, "@bob"),
	}}
	seen := &fakeSeenTracker{seen: map[string]map[string]struct{}{
		"@alice": {"seen-post": {}},
	}}
	writer := &fakeFeedWriter{}
	registry := NewRegistry()

	pipeline := NewPipeline(posts, seen, writer, registry, discardLogger())

	agents := []simcore.Agent{{Handle: "@alice"}}
	feeds, err := pipeline.GenerateAll(context.Background(), "run-1", 0, agents, "chronological", nil)
	require.NoError(t, err)

	agentFeed := feeds["@alice"]
	require.Len(t, agentFeed, 1)
	assert.Equal(t, "fresh-post", agentFeed[0].PostID)
	require.Len(t, writer.written, 1)
	assert.Equal(t, []string{"fresh-post"}, writer.written[0].PostIDs)
}

func TestPipeline_GenerateAll_EmptyFeedHasNoMapEntry(t *testing.T) {
	posts := &fakePostSource{}
	seen := &fakeSeenTracker{}
	writer := &fakeFeedWriter{}
	registry := NewRegistry()

	pipeline := NewPipeline(posts, seen, writer, registry, discardLogger())

	agents := []simcore.Agent{{Handle: "@alice"}}
	feeds, err := pipeline.GenerateAll(context.Background(), "run-1", 0, agents, "chronological", nil)
	require.NoError(t, err)
	_, ok := feeds["@alice"]
	assert.False(t, ok)
	require.Len(t, writer.written, 1)
	assert.Empty(t, writer.written[0].PostIDs)
}
