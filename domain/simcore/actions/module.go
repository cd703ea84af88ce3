package actions

import (
	"go.uber.org/fx"

	"github.com/socialsim/engine/domain/simcore"
	"github.com/socialsim/engine/domain/simcore/actions/comment"
	"github.com/socialsim/engine/domain/simcore/actions/follow"
	"github.com/socialsim/engine/domain/simcore/actions/like"
	"github.com/socialsim/engine/internal/config"
	"github.com/socialsim/engine/pkg/llmpolicy"
)

// Module provides the action-generator registry and pipeline, with the
// reference algorithms pre-registered and configured defaults applied.
var Module = fx.Module("actions",
	fx.Provide(NewConfiguredRegistry),
	fx.Provide(NewPipeline),
)

// NewConfiguredRegistry registers the reference like/comment/follow
// algorithms and applies per-action defaults from configuration
// (spec §6: `{action}.default_algorithm`). The LLM-backed like generator
// is registered only when llmpolicy.Client.IsConfigured reports true.
func NewConfiguredRegistry(cfg *config.Config, llm *llmpolicy.Client) *Registry {
	r := NewRegistry()

	r.RegisterLike("deterministic", like.Deterministic)
	r.RegisterLike("random_simple", like.RandomSimple)
	if llm.IsConfigured() {
		r.RegisterLike("naive_llm", like.NewNaiveLLM(llm))
	}

	r.RegisterComment("random_simple", comment.RandomSimple)
	r.RegisterFollow("random_simple", follow.RandomSimple)

	if cfg.Sim.DefaultLikeAlgorithm != "" {
		r.SetDefaultAlgorithm(simcore.ActionLike, cfg.Sim.DefaultLikeAlgorithm)
	}
	if cfg.Sim.DefaultCommentAlgorithm != "" {
		r.SetDefaultAlgorithm(simcore.ActionComment, cfg.Sim.DefaultCommentAlgorithm)
	}
	if cfg.Sim.DefaultFollowAlgorithm != "" {
		r.SetDefaultAlgorithm(simcore.ActionFollow, cfg.Sim.DefaultFollowAlgorithm)
	}

	return r
}
