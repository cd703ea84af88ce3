package repo

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/socialsim/engine/domain/simcore"
)

// PostRepository is the bun-backed feeds.PostSource (spec §4.4, §4.8).
type PostRepository struct {
	db bun.IDB
}

func NewPostRepository(db bun.IDB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) ListAllFeedPosts(ctx context.Context) ([]simcore.Post, error) {
	var models []postModel
	if err := r.db.NewSelect().Model(&models).Scan(ctx); err != nil {
		return nil, err
	}
	posts := make([]simcore.Post, len(models))
	for i := range models {
		posts[i] = toPost(&models[i])
	}
	return posts, nil
}

// ReadFeedPostsByIDs preserves input order and silently omits IDs that
// no longer resolve to a post (spec §4.8 FeedPostRepo contract).
func (r *PostRepository) ReadFeedPostsByIDs(ctx context.Context, postIDs []string) ([]simcore.Post, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var models []postModel
	if err := r.db.NewSelect().Model(&models).Where("post_id IN (?)", bun.In(postIDs)).Scan(ctx); err != nil {
		return nil, err
	}
	byID := make(map[string]simcore.Post, len(models))
	for i := range models {
		byID[models[i].PostID] = toPost(&models[i])
	}
	posts := make([]simcore.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if post, ok := byID[id]; ok {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func toPost(m *postModel) simcore.Post {
	return simcore.Post{
		PostID:        m.PostID,
		Source:        simcore.PostSource(m.Source),
		URI:           m.URI,
		AuthorHandle:  m.AuthorHandle,
		AuthorDisplay: m.AuthorDisplay,
		Text:          m.Text,
		LikeCount:     m.LikeCount,
		BookmarkCount: m.BookmarkCount,
		QuoteCount:    m.QuoteCount,
		ReplyCount:    m.ReplyCount,
		RepostCount:   m.RepostCount,
		CreatedAt:     m.CreatedAt,
	}
}

// FeedRepository is the bun-backed feeds.SeenTracker and feeds.FeedWriter
// (spec §4.4, §4.8).
type FeedRepository struct {
	db bun.IDB
}

func NewFeedRepository(db bun.IDB) *FeedRepository {
	return &FeedRepository{db: db}
}

func (r *FeedRepository) SeenPostIDs(ctx context.Context, runID, agentHandle string) (map[string]struct{}, error) {
	var models []generatedFeedModel
	err := r.db.NewSelect().
		Model(&models).
		Column("post_ids").
		Where("run_id = ? AND agent_handle = ?", runID, agentHandle).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, m := range models {
		for _, id := range m.PostIDs {
			seen[id] = struct{}{}
		}
	}
	return seen, nil
}

// WriteGeneratedFeed upserts by (agent_handle, run_id, turn_number) with
// delete-then-insert semantics (spec §4.8 GeneratedFeedRepo contract).
func (r *FeedRepository) WriteGeneratedFeed(ctx context.Context, feed simcore.GeneratedFeed) error {
	_, err := r.db.NewDelete().
		Model((*generatedFeedModel)(nil)).
		Where("run_id = ? AND turn_number = ? AND agent_handle = ?", feed.RunID, feed.TurnNumber, feed.AgentHandle).
		Exec(ctx)
	if err != nil {
		return err
	}

	model := &generatedFeedModel{
		FeedID:      feed.FeedID,
		RunID:       feed.RunID,
		TurnNumber:  feed.TurnNumber,
		AgentHandle: feed.AgentHandle,
		PostIDs:     feed.PostIDs,
		CreatedAt:   feed.CreatedAt,
	}
	_, err = r.db.NewInsert().Model(model).Exec(ctx)
	return err
}
