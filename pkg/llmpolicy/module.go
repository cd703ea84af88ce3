package llmpolicy

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/socialsim/engine/internal/config"
	"github.com/socialsim/engine/pkg/retry"
)

// Module provides the structured-completion Client. With no API key
// configured, IsConfigured reports false and LLM-backed generators are
// skipped at registration time.
var Module = fx.Module("llmpolicy", fx.Provide(NewClientFromConfig))

func NewClientFromConfig(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {
	apiKey := ""
	if cfg.LLM.IsEnabled() {
		apiKey = cfg.LLM.GoogleAPIKey
	}
	return NewClient(ctx, Config{
		APIKey: apiKey,
		Model:  cfg.LLM.Model,
		Retry: retry.Config{
			MaxAttempts:       cfg.LLM.MaxRetries,
			InitialBackoff:    cfg.LLM.InitialBackoff,
			MaxBackoff:        cfg.LLM.MaxBackoff,
			BackoffMultiplier: 2.0,
			Jitter:            0.1,
		},
	}, log)
}
