package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialsim/engine/domain/simcore"
)

func noopLike(ctx context.Context, agent simcore.Agent, candidates []simcore.Post, config map[string]any) ([]simcore.GeneratedLike, error) {
	return nil, nil
}

func TestRegistry_ResolveAlgorithm_ExplicitOverridesDefault(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "custom", r.ResolveAlgorithm(simcore.ActionLike, "custom"))
}

func TestRegistry_ResolveAlgorithm_FallsBackToHardcodedDefault(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "deterministic", r.ResolveAlgorithm(simcore.ActionLike, ""))
	assert.Equal(t, "random_simple", r.ResolveAlgorithm(simcore.ActionComment, ""))
	assert.Equal(t, "random_simple", r.ResolveAlgorithm(simcore.ActionFollow, ""))
}

func TestRegistry_SetDefaultAlgorithm_OverridesFallback(t *testing.T) {
	r := NewRegistry()
	r.SetDefaultAlgorithm(simcore.ActionLike, "random_simple")
	assert.Equal(t, "random_simple", r.ResolveAlgorithm(simcore.ActionLike, ""))
}

func TestRegistry_Like_UnknownAlgorithmErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Like("does-not-exist")
	require.Error(t, err)
}

func TestRegistry_Like_ReturnsRegisteredGenerator(t *testing.T) {
	r := NewRegistry()
	r.RegisterLike("noop", noopLike)
	gen, err := r.Like("noop")
	require.NoError(t, err)
	require.NotNil(t, gen)
}
