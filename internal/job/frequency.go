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

// Frequency counts SKU occurrences across active customers' draft
// boxes and upserts them into demand_aggregate. The active filter runs
// at join time, so filtered customers never reach the denominator.
type Frequency struct {
	log     *zap.Logger
	source  draftboxdomain.Source
	sink    reportdomain.Sink
	cfg     config.Config
	metrics *metrics.JobMetrics
	clock   clock.Clock
}

func NewFrequency(p Params) *Frequency {
	return &Frequency{
		log:     p.Log.Named("job.frequency"),
		source:  p.Source,
		sink:    p.Sink,
		cfg:     p.Cfg,
		metrics: p.Metrics,
		clock:   p.Clock,
	}
}

func (j *Frequency) Name() string { return NameFrequency }

func (j *Frequency) Run(ctx context.Context, target period.Period) error {
	started := j.clock.Now().UTC()
	j.log.Info("starting frequency aggregation", zap.Stringer("period", target))

	boxes, customers, err := fetchJoinInput(ctx, j.source, target)
	if err != nil {
		return err
	}
	j.metrics.AddRecordsRead(NameFrequency, len(boxes))

	var skipped int64
	joined := forecast.JoinAll(boxes, customers, forecast.StripeActive, func(box draftboxdomain.DraftBox, reason forecast.SkipReason) {
		skipped++
		j.metrics.IncSkipped(NameFrequency, string(reason))
		j.log.Info("skipping draft box",
			zap.String("customer_id", box.CustomerID),
			zap.String("reason", string(reason)),
		)
	})

	entries := forecast.FrequencyBySKU(joined)
	rows := make([]reportdomain.FrequencyRow, 0, len(entries))
	skus := make([]string, 0, len(entries))
	for _, entry := range entries {
		j.log.Info("snack frequency",
			zap.String("sku", entry.SKU),
			zap.Int64("count", entry.Count),
		)
		rows = append(rows, reportdomain.FrequencyRow{SKU: entry.SKU, Count: entry.Count})
		skus = append(skus, entry.SKU)
	}

	if err := j.sink.UpsertFrequency(ctx, rows); err != nil {
		j.metrics.AddRowsWritten(NameFrequency, "failed", len(rows))
		run := finishRun(j.log, j.metrics, NameFrequency, started, j.clock.Now().UTC(), target,
			int64(len(boxes)), 0, skipped, reportdomain.RunStatusFailed, map[string]any{"error": err.Error()})
		recordRun(ctx, j.log, j.sink, run)
		return err
	}
	j.metrics.AddRowsWritten(NameFrequency, "success", len(rows))

	var pruned int64
	if j.cfg.DemandRetention == config.RetentionPrune {
		pruned, err = j.sink.PruneFrequencyExcept(ctx, skus)
		if err != nil {
			j.log.Error("failed to prune stale frequency rows", zap.Error(err))
		}
	}

	run := finishRun(j.log, j.metrics, NameFrequency, started, j.clock.Now().UTC(), target,
		int64(len(boxes)), int64(len(rows)), skipped, reportdomain.RunStatusSucceeded,
		map[string]any{"pruned": pruned})
	recordRun(ctx, j.log, j.sink, run)
	return nil
}
