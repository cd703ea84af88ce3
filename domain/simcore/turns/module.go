package turns

import "go.uber.org/fx"

// Module provides the turn orchestrator.
var Module = fx.Module("turns", fx.Provide(NewOrchestrator))
