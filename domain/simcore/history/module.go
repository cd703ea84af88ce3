package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/socialsim/engine/internal/config"
)

// Module provides the history Store chosen by configuration
// (SIM_HISTORY_BACKEND: "memory" or "redis").
var Module = fx.Module("history", fx.Provide(NewStore))

func NewStore(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (Store, error) {
	switch cfg.Sim.HistoryBackend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Sim.RedisAddr,
			DB:   cfg.Sim.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error { return client.Close() },
		})
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("history: unknown backend %q", cfg.Sim.HistoryBackend)
	}
}
