package runs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsim/engine/domain/simcore"
)

type fakeAgentRepo struct {
	agents []simcore.Agent
}

func (f *fakeAgentRepo) ListAgents(ctx context.Context, limit int) ([]simcore.Agent, error) {
	if limit > len(f.agents) {
		return f.agents, nil
	}
	return f.agents[:limit], nil
}

func TestRepoAgentFactory_MaterializeAgents_ReturnsRequestedCount(t *testing.T) {
	factory := NewRepoAgentFactory(&fakeAgentRepo{agents: []simcore.Agent{
		{Handle: "@alice"}, {Handle: "@bob"}, {Handle: "@carol"},
	}})

	agents, err := factory.MaterializeAgents(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, agents, 2)
}

func TestRepoAgentFactory_MaterializeAgents_InsufficientAgentsErrors(t *testing.T) {
	factory := NewRepoAgentFactory(&fakeAgentRepo{agents: []simcore.Agent{{Handle: "@alice"}}})

	_, err := factory.MaterializeAgents(context.Background(), 5)
	require.Error(t, err)
	var insufficient *simcore.InsufficientAgentsError
	assert.ErrorAs(t, err, &insufficient)
}

func TestRepoAgentFactory_MaterializeAgents_DuplicateHandleErrors(t *testing.T) {
	factory := NewRepoAgentFactory(&fakeAgentRepo{agents: []simcore.Agent{
		{Handle: "@alice"}, {Handle: "@alice"},
	}})

	_, err := factory.MaterializeAgents(context.Background(), 2)
	require.Error(t, err)
	var dup *simcore.DuplicateHandleError
	assert.ErrorAs(t, err, &dup)
}
