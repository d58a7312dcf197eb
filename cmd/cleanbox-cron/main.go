package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/JWax21/cleanbox-cron/internal/clock"
	"github.com/JWax21/cleanbox-cron/internal/config"
	"github.com/JWax21/cleanbox-cron/internal/draftbox"
	"github.com/JWax21/cleanbox-cron/internal/job"
	"github.com/JWax21/cleanbox-cron/internal/observability/logger"
	"github.com/JWax21/cleanbox-cron/internal/observability/metrics"
	"github.com/JWax21/cleanbox-cron/internal/period"
	"github.com/JWax21/cleanbox-cron/internal/report"
	reportdomain "github.com/JWax21/cleanbox-cron/internal/report/domain"
	"github.com/JWax21/cleanbox-cron/pkg/db"
	"github.com/JWax21/cleanbox-cron/pkg/mongodb"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("cleanbox-cron", flag.ExitOnError)
	fixed := fs.Int("period", 0, "fixed MMYY period to target instead of the next calendar month")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: cleanbox-cron [-period MMYY] <%s|%s|%s>\n", job.NameDemand, job.NameFrequency, job.NameOrders)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	name := fs.Arg(0)

	app := fx.New(
		config.Module,
		logger.Module,
		metrics.Module,
		clock.Module,
		period.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		mongodb.Module,
		draftbox.Module,
		report.Module,
		job.Module,
		fx.Invoke(func(sink reportdomain.Sink) error {
			return sink.Migrate(context.Background())
		}),
		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, registry *job.Registry, resolver *period.Resolver, log *zap.Logger) error {
			selected, err := registry.Lookup(name)
			if err != nil {
				return err
			}

			target := resolver.Next()
			if *fixed != 0 {
				target = period.Period(*fixed)
				if !target.Valid() {
					return fmt.Errorf("invalid period %d: want MMYY with month 01-12", *fixed)
				}
			}

			log.Info("cleanbox-cron starting",
				zap.String("version", version),
				zap.String("job", selected.Name()),
				zap.Stringer("period", target),
			)

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						code := 0
						if err := selected.Run(context.Background(), target); err != nil {
							log.Error("job failed", zap.String("job", selected.Name()), zap.Error(err))
							code = 1
						}
						_ = shutdowner.Shutdown(fx.ExitCode(code))
					}()
					return nil
				},
			})
			return nil
		}),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
