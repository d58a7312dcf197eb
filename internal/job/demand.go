package job

import (
	"context"

	"go.uber.org/zap"

	"github.com/JWax21/cleanbox-cron/internal/clock"
	"github.com/JWax21/cleanbox-cron/internal/config"
	draftboxdomain "github.com/JWax21/cleanbox-cron/internal/draftbox/domain"
	"github.com/JWax21/cleanbox-cron/internal/forecast"
	"github.com/JWax21/cleanbox-cron/internal/observability/metrics"
	"github.com/JWax21/cleanbox-cron/internal/period"
	reportdomain "github.com/JWax21/cleanbox-cron/internal/report/domain"
)

// Demand computes status-split projected demand per SKU and upserts it
// into fd_aggregate_demand_by_snack. Status is a classification
// dimension here, not a filter: every resolvable customer counts.
type Demand struct {
	log     *zap.Logger
	source  draftboxdomain.Source
	sink    reportdomain.Sink
	cfg     config.Config
	metrics *metrics.JobMetrics
	clock   clock.Clock
}

func NewDemand(p Params) *Demand {
	return &Demand{
		log:     p.Log.Named("job.demand"),
		source:  p.Source,
		sink:    p.Sink,
		cfg:     p.Cfg,
		metrics: p.Metrics,
		clock:   p.Clock,
	}
}

func (j *Demand) Name() string { return NameDemand }

func (j *Demand) Run(ctx context.Context, target period.Period) error {
	started := j.clock.Now().UTC()
	j.log.Info("starting demand aggregation", zap.Stringer("period", target))

	boxes, customers, err := fetchJoinInput(ctx, j.source, target)
	if err != nil {
		return err
	}
	j.metrics.AddRecordsRead(NameDemand, len(boxes))

	var skipped int64
	joined := forecast.JoinAll(boxes, customers, forecast.AnyStatus, func(box draftboxdomain.DraftBox, reason forecast.SkipReason) {
		skipped++
		j.metrics.IncSkipped(NameDemand, string(reason))
		j.log.Warn("skipping draft box",
			zap.String("customer_id", box.CustomerID),
			zap.String("reason", string(reason)),
		)
	})

	entries := forecast.DemandBySKU(joined)
	rows := make([]reportdomain.DemandRow, 0, len(entries))
	skus := make([]string, 0, len(entries))
	for _, entry := range entries {
		j.log.Info("projected demand",
			zap.String("sku", entry.SKU),
			zap.Int64("confirmed", entry.Confirmed),
			zap.Int64("pending", entry.Pending),
			zap.Int64("projected", entry.Projected),
		)
		rows = append(rows, reportdomain.DemandRow{
			SKU:       entry.SKU,
			Confirmed: entry.Confirmed,
			Pending:   entry.Pending,
			Projected: entry.Projected,
		})
		skus = append(skus, entry.SKU)
	}

	if err := j.sink.UpsertDemand(ctx, rows); err != nil {
		j.metrics.AddRowsWritten(NameDemand, "failed", len(rows))
		run := finishRun(j.log, j.metrics, NameDemand, started, j.clock.Now().UTC(), target,
			int64(len(boxes)), 0, skipped, reportdomain.RunStatusFailed, map[string]any{"error": err.Error()})
		recordRun(ctx, j.log, j.sink, run)
		return err
	}
	j.metrics.AddRowsWritten(NameDemand, "success", len(rows))

	var pruned int64
	if j.cfg.DemandRetention == config.RetentionPrune {
		pruned, err = j.sink.PruneDemandExcept(ctx, skus)
		if err != nil {
			// Retention is housekeeping after a successful publish.
			j.log.Error("failed to prune stale demand rows", zap.Error(err))
		}
	}

	run := finishRun(j.log, j.metrics, NameDemand, started, j.clock.Now().UTC(), target,
		int64(len(boxes)), int64(len(rows)), skipped, reportdomain.RunStatusSucceeded,
		map[string]any{"pruned": pruned})
	recordRun(ctx, j.log, j.sink, run)
	return nil
}
