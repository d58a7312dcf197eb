// Package logger provides the shared zap logger: JSON output in
// production, console output everywhere else. It also carries the
// masking helpers that keep store credentials out of log lines.
package logger

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/JWax21/cleanbox-cron/internal/config"
)

var Module = fx.Module("logger",
	fx.Provide(New),
)

func New(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
