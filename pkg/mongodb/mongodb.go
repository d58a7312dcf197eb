// Package mongodb provides the operational-store client as an fx
// module. The connection is acquired once at startup, pinged before
// any job work runs, and released on every exit path.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/JWax21/cleanbox-cron/internal/config"
	"github.com/JWax21/cleanbox-cron/internal/observability/logger"
)

var Module = fx.Module("mongodb",
	fx.Provide(New),
	fx.Provide(NewDatabase),
)

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
	LC  fx.Lifecycle
}

func New(p Params) (*mongo.Client, error) {
	p.Log.Info("connecting to source store", zap.String("uri", logger.MaskDSN(p.Cfg.MongoURI)))

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(p.Cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect source store: %w", err)
	}

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return fmt.Errorf("ping source store: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return client, nil
}

func NewDatabase(client *mongo.Client, cfg config.Config) *mongo.Database {
	return client.Database(cfg.MongoDatabase)
}
