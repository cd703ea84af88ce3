package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/socialsim/engine/domain/simcore"
)

// QueryRepository is the bun-backed query.TurnMetadataReader and
// query.TurnDataReader (spec §4.9).
type QueryRepository struct {
	db bun.IDB
}

func NewQueryRepository(db bun.IDB) *QueryRepository {
	return &QueryRepository{db: db}
}

func (r *QueryRepository) GetTurnMetadata(ctx context.Context, runID string, turn int) (*simcore.TurnMetadata, error) {
	model := new(turnMetadataModel)
	err := r.db.NewSelect().Model(model).Where("run_id = ? AND turn_number = ?", runID, turn).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return toTurnMetadata(model), nil
}

func (r *QueryRepository) ListTurnMetadata(ctx context.Context, runID string) ([]simcore.TurnMetadata, error) {
	var models []turnMetadataModel
	err := r.db.NewSelect().Model(&models).Where("run_id = ?", runID).Order("turn_number ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	metas := make([]simcore.TurnMetadata, len(models))
	for i := range models {
		metas[i] = *toTurnMetadata(&models[i])
	}
	return metas, nil
}

func toTurnMetadata(m *turnMetadataModel) *simcore.TurnMetadata {
	totals := make(map[simcore.ActionKind]int, len(m.TotalActions))
	for kind, count := range m.TotalActions {
		totals[simcore.ActionKind(kind)] = count
	}
	return &simcore.TurnMetadata{RunID: m.RunID, TurnNumber: m.TurnNumber, TotalActions: totals, CreatedAt: m.CreatedAt}
}

func (r *QueryRepository) GetGeneratedFeedsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedFeed, error) {
	var models []generatedFeedModel
	err := r.db.NewSelect().Model(&models).Where("run_id = ? AND turn_number = ?", runID, turn).Scan(ctx)
	if err != nil {
		return nil, err
	}
	feeds := make([]simcore.GeneratedFeed, len(models))
	for i, m := range models {
		feeds[i] = simcore.GeneratedFeed{
			FeedID:      m.FeedID,
			RunID:       m.RunID,
			TurnNumber:  m.TurnNumber,
			AgentHandle: m.AgentHandle,
			PostIDs:     m.PostIDs,
			CreatedAt:   m.CreatedAt,
		}
	}
	return feeds, nil
}

func (r *QueryRepository) ReadFeedPostsByIDs(ctx context.Context, postIDs []string) ([]simcore.Post, error) {
	return (&PostRepository{db: r.db}).ReadFeedPostsByIDs(ctx, postIDs)
}

func (r *QueryRepository) GetLikesForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedLike, error) {
	var models []likeModel
	err := r.db.NewSelect().Model(&models).Where("run_id = ? AND turn_number = ?", runID, turn).Scan(ctx)
	if err != nil {
		return nil, err
	}
	likes := make([]simcore.GeneratedLike, len(models))
	for i, m := range models {
		likes[i] = simcore.GeneratedLike{
			AgentHandle: m.AgentHandle,
			PostID:      m.PostID,
			Explanation: m.Explanation,
			Meta:        decodeGenerationMeta(m.ModelUsed, m.GenerationMetadataJSON, m.GenerationCreatedAt),
		}
	}
	return likes, nil
}

func (r *QueryRepository) GetCommentsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedComment, error) {
	var models []commentModel
	err := r.db.NewSelect().Model(&models).Where("run_id = ? AND turn_number = ?", runID, turn).Scan(ctx)
	if err != nil {
		return nil, err
	}
	comments := make([]simcore.GeneratedComment, len(models))
	for i, m := range models {
		comments[i] = simcore.GeneratedComment{
			AgentHandle: m.AgentHandle,
			PostID:      m.PostID,
			Text:        m.Text,
			Explanation: m.Explanation,
			Meta:        decodeGenerationMeta(m.ModelUsed, m.GenerationMetadataJSON, m.GenerationCreatedAt),
		}
	}
	return comments, nil
}

func (r *QueryRepository) GetFollowsForTurn(ctx context.Context, runID string, turn int) ([]simcore.GeneratedFollow, error) {
	var models []followModel
	err := r.db.NewSelect().Model(&models).Where("run_id = ? AND turn_number = ?", runID, turn).Scan(ctx)
	if err != nil {
		return nil, err
	}
	follows := make([]simcore.GeneratedFollow, len(models))
	for i, m := range models {
		follows[i] = simcore.GeneratedFollow{
			AgentHandle: m.AgentHandle,
			UserID:      m.UserID,
			Explanation: m.Explanation,
			Meta:        decodeGenerationMeta(m.ModelUsed, m.GenerationMetadataJSON, m.GenerationCreatedAt),
		}
	}
	return follows, nil
}
