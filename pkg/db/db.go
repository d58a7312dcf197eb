// Package db provides the analytical-store connection as an fx module.
package db

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/JWax21/cleanbox-cron/internal/config"
	"github.com/JWax21/cleanbox-cron/internal/observability/logger"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
	LC  fx.Lifecycle
}

func New(p Params) (*gorm.DB, error) {
	dsn, err := BuildDSN(p.Cfg.SupabaseDBURL, p.Cfg.SupabaseDBPassword)
	if err != nil {
		return nil, err
	}
	p.Log.Info("connecting to sink store", zap.String("dsn", logger.MaskDSN(dsn)))

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sink store: %w", err)
	}

	p.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return conn, nil
}

// BuildDSN injects the externally supplied credential into the sink
// endpoint URL. The endpoint itself never carries a password.
func BuildDSN(endpoint, password string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse sink endpoint: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse sink endpoint: missing host in %q", endpoint)
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, password)
	return u.String(), nil
}
