package repo

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/socialsim/engine/domain/simcore"
)

// AgentRepository is the bun-backed runs.AgentRepo (spec §4.2, §4.8).
type AgentRepository struct {
	db bun.IDB
}

func NewAgentRepository(db bun.IDB) *AgentRepository {
	return &AgentRepository{db: db}
}

// ListAgents returns up to limit agents ordered by handle, giving the
// agent factory a deterministic materialization order (spec §4.2).
func (r *AgentRepository) ListAgents(ctx context.Context, limit int) ([]simcore.Agent, error) {
	var models []agentModel
	err := r.db.NewSelect().Model(&models).Order("handle ASC").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, err
	}
	agents := make([]simcore.Agent, len(models))
	for i, m := range models {
		agents[i] = simcore.Agent{
			AgentID:     m.AgentID,
			Handle:      m.Handle,
			DisplayName: m.DisplayName,
			Source:      simcore.PersonaSource(m.Source),
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
		}
	}
	return agents, nil
}
