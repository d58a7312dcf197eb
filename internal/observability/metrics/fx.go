package metrics

import (
	"go.uber.org/fx"

	"github.com/JWax21/cleanbox-cron/internal/config"
)

var Module = fx.Module("metrics",
	fx.Provide(func(cfg config.Config) *JobMetrics {
		return JobWithConfig(Config{
			ServiceName: "cleanbox-cron",
			Environment: cfg.Environment,
		})
	}),
)
