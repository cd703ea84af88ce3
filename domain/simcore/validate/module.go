package validate

import "go.uber.org/fx"

// Module provides the invariant checker.
var Module = fx.Module("validate", fx.Provide(New))
