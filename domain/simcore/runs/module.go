package runs

import "go.uber.org/fx"

// Module provides the run orchestrator and its default AgentFactory.
var Module = fx.Module("runs",
	fx.Provide(fx.Annotate(NewRepoAgentFactory, fx.As(new(AgentFactory)))),
	fx.Provide(NewOrchestrator),
)
