package repo

import (
	"go.uber.org/fx"

	"github.com/socialsim/engine/domain/simcore/feeds"
	"github.com/socialsim/engine/domain/simcore/query"
	"github.com/socialsim/engine/domain/simcore/runs"
	"github.com/socialsim/engine/domain/simcore/turns"
)

// Module provides every bun-backed repository and binds it against the
// port interfaces domain/simcore's orchestration packages depend on.
var Module = fx.Module("simcore-repo",
	fx.Provide(fx.Annotate(NewBunTransactionProvider, fx.As(new(TransactionProvider)))),
	fx.Provide(
		NewRunRepository,
		fx.Annotate(func(r *RunRepository) runs.RunRepo { return r }),
		fx.Annotate(func(r *RunRepository) runs.MetricsRepo { return r }),
		fx.Annotate(func(r *RunRepository) turns.RunRepo { return r }),
		fx.Annotate(func(r *RunRepository) query.RunReader { return r }),
	),
	fx.Provide(fx.Annotate(NewAgentRepository, fx.As(new(runs.AgentRepo)))),
	fx.Provide(NewPostRepository, fx.Annotate(func(p *PostRepository) feeds.PostSource { return p })),
	fx.Provide(
		NewFeedRepository,
		fx.Annotate(func(r *FeedRepository) feeds.SeenTracker { return r }),
		fx.Annotate(func(r *FeedRepository) feeds.FeedWriter { return r }),
	),
	fx.Provide(fx.Annotate(NewTurnPersistence, fx.As(new(turns.Persistence)))),
	fx.Provide(
		NewQueryRepository,
		fx.Annotate(func(r *QueryRepository) query.TurnMetadataReader { return r }),
		fx.Annotate(func(r *QueryRepository) query.TurnDataReader { return r }),
	),
)
