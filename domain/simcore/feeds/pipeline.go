package feeds

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/pkg/logger"
)

// Pipeline generates, persists, and hydrates feeds for every agent in a
// turn (spec §4.4).
type Pipeline struct {
	posts    PostSource
	seen     SeenTracker
	writer   FeedWriter
	registry *Registry
	log      *slog.Logger
}

func NewPipeline(posts PostSource, seen SeenTracker, writer FeedWriter, registry *Registry, log *slog.Logger) *Pipeline {
	return &Pipeline{
		posts:    posts,
		seen:     seen,
		writer:   writer,
		registry: registry,
		log:      log.With(logger.Scope("simcore.feeds")),
	}
}

// GenerateAll runs feed generation for every agent, sequentially, in
// iteration order (spec §5: deterministic turn metadata requires
// sequential per-agent processing). It returns the hydrated posts for
// agents whose feed is non-empty; an agent with an empty feed has no
// entry in the returned map.
func (p *Pipeline) GenerateAll(
	ctx context.Context,
	runID string,
	turnNumber int,
	agents []simcore.Agent,
	algorithmName string,
	config map[string]any,
) (map[string][]simcore.Post, error) {
	alg, err := p.registry.Get(algorithmName)
	if err != nil {
		return nil, err
	}

	corpus, err := p.posts.ListAllFeedPosts(ctx)
	if err != nil {
		return nil, err
	}

	feedPostIDs := make(map[string][]string, len(agents))
	unionIDs := make(map[string]struct{})

	for _, agent := range agents {
		candidates, err := p.filterCandidates(ctx, runID, agent, corpus)
		if err != nil {
			return nil, err
		}

		result, err := alg(candidates, agent, simcore.MaxPostsPerFeed, config)
		if err != nil {
			return nil, err
		}

		feed := simcore.GeneratedFeed{
			FeedID:      uuid.NewString(),
			RunID:       runID,
			TurnNumber:  turnNumber,
			AgentHandle: agent.Handle,
			PostIDs:     result.PostIDs,
			CreatedAt:   time.Now(),
		}
		if err := p.writer.WriteGeneratedFeed(ctx, feed); err != nil {
			return nil, err
		}

		if len(result.PostIDs) > 0 {
			feedPostIDs[agent.Handle] = result.PostIDs
			for _, id := range result.PostIDs {
				unionIDs[id] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(unionIDs))
	for id := range unionIDs {
		ids = append(ids, id)
	}
	hydrated, err := p.posts.ReadFeedPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]simcore.Post, len(hydrated))
	for _, post := range hydrated {
		byID[post.PostID] = post
	}

	feeds := make(map[string][]simcore.Post, len(feedPostIDs))
	for handle, postIDs := range feedPostIDs {
		var missing []string
		agentPosts := make([]simcore.Post, 0, len(postIDs))
		for _, id := range postIDs {
			post, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			agentPosts = append(agentPosts, post)
		}
		if len(missing) > 0 {
			sample := missing
			if len(sample) > 5 {
				sample = sample[:5]
			}
			p.log.Warn("feed hydration missing posts",
				slog.String("agent_handle", handle),
				slog.Any("missing_sample", sample),
				slog.Int("missing_total", len(missing)),
			)
		}
		feeds[handle] = agentPosts
	}

	return feeds, nil
}

func (p *Pipeline) filterCandidates(ctx context.Context, runID string, agent simcore.Agent, corpus []simcore.Post) ([]simcore.Post, error) {
	seen, err := p.seen.SeenPostIDs(ctx, runID, agent.Handle)
	if err != nil {
		return nil, err
	}

	candidates := make([]simcore.Post, 0, len(corpus))
	for _, post := range corpus {
		if _, ok := seen[post.PostID]; ok {
			continue
		}
		if post.AuthorHandle == agent.Handle {
			continue
		}
		candidates = append(candidates, post)
	}
	return candidates, nil
}
