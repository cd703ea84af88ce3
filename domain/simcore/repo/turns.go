package repo

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/pkg/logger"
	"github.com/socialsim/engine/pkg/pgutils"
)

// TurnPersistence implements turns.Persistence: one transaction writes
// turn metadata, turn metrics, and every accepted action for the turn
// (spec §4.3 step 6, §4.8 "Atomic turn write").
type TurnPersistence struct {
	tx  TransactionProvider
	log *slog.Logger
}

func NewTurnPersistence(tx TransactionProvider, log *slog.Logger) *TurnPersistence {
	return &TurnPersistence{tx: tx, log: log.With(logger.Scope("simcore.repo.turns"))}
}

func (p *TurnPersistence) WriteTurn(
	ctx context.Context,
	meta simcore.TurnMetadata,
	metrics simcore.TurnMetrics,
	likes []simcore.GeneratedLike,
	comments []simcore.GeneratedComment,
	follows []simcore.GeneratedFollow,
) error {
	return p.tx.RunTransaction(ctx, func(ctx context.Context, tx bun.IDB) error {
		totalActions := make(map[string]int, len(meta.TotalActions))
		for kind, count := range meta.TotalActions {
			totalActions[string(kind)] = count
		}

		metaModel := &turnMetadataModel{
			RunID:        meta.RunID,
			TurnNumber:   meta.TurnNumber,
			TotalActions: totalActions,
			CreatedAt:    meta.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(metaModel).Exec(ctx); err != nil {
			if pgutils.IsUniqueViolation(err) {
				return simcore.NewDuplicateTurnMetadataError(meta.RunID, meta.TurnNumber)
			}
			return err
		}

		metricsModel := &turnMetricsModel{
			RunID:      metrics.RunID,
			TurnNumber: metrics.TurnNumber,
			Metrics:    metrics.Metrics,
			CreatedAt:  metrics.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(metricsModel).Exec(ctx); err != nil {
			return err
		}

		if err := writeLikes(ctx, tx, meta.RunID, meta.TurnNumber, likes); err != nil {
			return err
		}
		if err := writeComments(ctx, tx, meta.RunID, meta.TurnNumber, comments); err != nil {
			return err
		}
		if err := writeFollows(ctx, tx, meta.RunID, meta.TurnNumber, follows); err != nil {
			return err
		}
		return nil
	})
}

func writeLikes(ctx context.Context, tx bun.IDB, runID string, turn int, likes []simcore.GeneratedLike) error {
	if len(likes) == 0 {
		return nil
	}
	models := make([]*likeModel, len(likes))
	for i, l := range likes {
		model, err := toLikeModel(runID, turn, l)
		if err != nil {
			return err
		}
		models[i] = model
	}
	_, err := tx.NewInsert().Model(&models).Exec(ctx)
	return err
}

func writeComments(ctx context.Context, tx bun.IDB, runID string, turn int, comments []simcore.GeneratedComment) error {
	if len(comments) == 0 {
		return nil
	}
	models := make([]*commentModel, len(comments))
	for i, c := range comments {
		model, err := toCommentModel(runID, turn, c)
		if err != nil {
			return err
		}
		models[i] = model
	}
	_, err := tx.NewInsert().Model(&models).Exec(ctx)
	return err
}

func writeFollows(ctx context.Context, tx bun.IDB, runID string, turn int, follows []simcore.GeneratedFollow) error {
	if len(follows) == 0 {
		return nil
	}
	models := make([]*followModel, len(follows))
	for i, f := range follows {
		model, err := toFollowModel(runID, turn, f)
		if err != nil {
			return err
		}
		models[i] = model
	}
	_, err := tx.NewInsert().Model(&models).Exec(ctx)
	return err
}

func toLikeModel(runID string, turn int, l simcore.GeneratedLike) (*likeModel, error) {
	modelUsed, metaJSON, createdAt, err := encodeGenerationMeta(l.Meta)
	if err != nil {
		return nil, err
	}
	return &likeModel{
		ID:                     uuid.NewString(),
		RunID:                  runID,
		TurnNumber:             turn,
		AgentHandle:            l.AgentHandle,
		PostID:                 l.PostID,
		Explanation:            l.Explanation,
		ModelUsed:              modelUsed,
		GenerationMetadataJSON: metaJSON,
		GenerationCreatedAt:    createdAt,
		CreatedAt:              time.Now(),
	}, nil
}

func toCommentModel(runID string, turn int, c simcore.GeneratedComment) (*commentModel, error) {
	modelUsed, metaJSON, createdAt, err := encodeGenerationMeta(c.Meta)
	if err != nil {
		return nil, err
	}
	return &commentModel{
		ID:                     uuid.NewString(),
		RunID:                  runID,
		TurnNumber:             turn,
		AgentHandle:            c.AgentHandle,
		PostID:                 c.PostID,
		Text:                   c.Text,
		Explanation:            c.Explanation,
		ModelUsed:              modelUsed,
		GenerationMetadataJSON: metaJSON,
		GenerationCreatedAt:    createdAt,
		CreatedAt:              time.Now(),
	}, nil
}

func toFollowModel(runID string, turn int, f simcore.GeneratedFollow) (*followModel, error) {
	modelUsed, metaJSON, createdAt, err := encodeGenerationMeta(f.Meta)
	if err != nil {
		return nil, err
	}
	return &followModel{
		ID:                     uuid.NewString(),
		RunID:                  runID,
		TurnNumber:             turn,
		AgentHandle:            f.AgentHandle,
		UserID:                 f.UserID,
		Explanation:            f.Explanation,
		ModelUsed:              modelUsed,
		GenerationMetadataJSON: metaJSON,
		GenerationCreatedAt:    createdAt,
		CreatedAt:              time.Now(),
	}, nil
}

// encodeGenerationMeta flattens a GenerationMetadata into the nullable
// columns backing generation provenance; a zero-value ModelUsed means
// the action came from a non-LLM generator, so every column stays nil.
func encodeGenerationMeta(meta simcore.GenerationMetadata) (*string, []byte, *time.Time, error) {
	if meta.ModelUsed == "" {
		return nil, nil, nil, nil
	}
	var raw []byte
	if len(meta.GenerationMetadata) > 0 {
		encoded, err := json.Marshal(meta.GenerationMetadata)
		if err != nil {
			return nil, nil, nil, err
		}
		raw = encoded
	}
	modelUsed := meta.ModelUsed
	createdAt := meta.CreatedAt
	return &modelUsed, raw, &createdAt, nil
}

// decodeGenerationMeta is encodeGenerationMeta's inverse, used by the
// query-side reads that hydrate GenerationMetadata from storage.
func decodeGenerationMeta(modelUsed *string, metaJSON []byte, createdAt *time.Time) simcore.GenerationMetadata {
	if modelUsed == nil {
		return simcore.GenerationMetadata{}
	}
	meta := simcore.GenerationMetadata{ModelUsed: *modelUsed}
	if createdAt != nil {
		meta.CreatedAt = *createdAt
	}
	if len(metaJSON) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(metaJSON, &decoded); err == nil {
			meta.GenerationMetadata = decoded
		}
	}
	return meta
}
