package runs

import (
	"context"

	"github.com/socialsim/engine/domain/simcore"
)

// AgentFactory materializes the agent population for a run (spec §4.2).
// Implementations must return exactly the requested count with unique
// handles, or the documented errors.
type AgentFactory interface {
	MaterializeAgents(ctx context.Context, numAgents int) ([]simcore.Agent, error)
}

// AgentRepo is the read-only backing store a RepoAgentFactory draws
// from: the fixed seed population of agents available to every run.
type AgentRepo interface {
	ListAgents(ctx context.Context, limit int) ([]simcore.Agent, error)
}

// RepoAgentFactory is the default AgentFactory: it draws the first
// numAgents agents from a fixed repository-backed population.
type RepoAgentFactory struct {
	repo AgentRepo
}

func NewRepoAgentFactory(repo AgentRepo) *RepoAgentFactory {
	return &RepoAgentFactory{repo: repo}
}

func (f *RepoAgentFactory) MaterializeAgents(ctx context.Context, numAgents int) ([]simcore.Agent, error) {
	agents, err := f.repo.ListAgents(ctx, numAgents)
	if err != nil {
		return nil, err
	}
	if len(agents) != numAgents {
		return nil, simcore.NewInsufficientAgentsError(numAgents, len(agents))
	}

	seen := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		if _, dup := seen[a.Handle]; dup {
			return nil, simcore.NewDuplicateHandleError(a.Handle)
		}
		seen[a.Handle] = struct{}{}
	}

	return agents, nil
}
