package feeds

import "go.uber.org/fx"

// Module provides the feed-algorithm registry and generation pipeline.
var Module = fx.Module("feeds",
	fx.Provide(NewRegistry),
	fx.Provide(NewPipeline),
)
