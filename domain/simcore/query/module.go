package query

import "go.uber.org/fx"

// Module provides the read-only query service.
var Module = fx.Module("query", fx.Provide(NewService))
