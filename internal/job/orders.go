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

// Orders submits one internal-order row per active-or-trialing
// customer with that customer's total snack units. Rows are written
// one at a time; a failed row is logged and the loop continues, so the
// run still succeeds overall.
type Orders struct {
	log     *zap.Logger
	source  draftboxdomain.Source
	sink    reportdomain.Sink
	cfg     config.Config
	metrics *metrics.JobMetrics
	clock   clock.Clock
}

func NewOrders(p Params) *Orders {
	return &Orders{
		log:     p.Log.Named("job.orders"),
		source:  p.Source,
		sink:    p.Sink,
		cfg:     p.Cfg,
		metrics: p.Metrics,
		clock:   p.Clock,
	}
}

func (j *Orders) Name() string { return NameOrders }

func (j *Orders) Run(ctx context.Context, target period.Period) error {
	started := j.clock.Now().UTC()
	j.log.Info("starting internal order submission",
		zap.Stringer("period", target),
		zap.String("write_mode", j.cfg.OrderWriteMode),
	)

	boxes, customers, err := fetchJoinInput(ctx, j.source, target)
	if err != nil {
		return err
	}
	j.metrics.AddRecordsRead(NameOrders, len(boxes))

	var skipped int64
	joined := forecast.JoinAll(boxes, customers, forecast.ActiveOrTrialing, func(box draftboxdomain.DraftBox, reason forecast.SkipReason) {
		skipped++
		j.metrics.IncSkipped(NameOrders, string(reason))
		j.log.Info("skipping draft box",
			zap.String("customer_id", box.CustomerID),
			zap.String("reason", string(reason)),
		)
	})

	entries := forecast.OrdersByCustomer(joined)

	var written, failed int64
	for _, entry := range entries {
		row := reportdomain.InternalOrder{
			CustomerID:       entry.CustomerID,
			Name:             entry.Name,
			Email:            entry.Email,
			SubscriptionType: entry.SubscriptionType,
			Month:            entry.Period,
			TotalSnacks:      entry.TotalSnacks,
		}

		var writeErr error
		if j.cfg.OrderWriteMode == config.OrderWriteUpsert {
			writeErr = j.sink.UpsertOrder(ctx, &row)
		} else {
			writeErr = j.sink.InsertOrder(ctx, &row)
		}
		if writeErr != nil {
			failed++
			j.metrics.AddRowsWritten(NameOrders, "failed", 1)
			j.log.Error("failed to write internal order",
				zap.String("customer_id", entry.CustomerID),
				zap.Error(writeErr),
			)
			continue
		}
		written++
		j.metrics.AddRowsWritten(NameOrders, "success", 1)
		j.log.Info("submitted internal order",
			zap.String("customer_id", entry.CustomerID),
			zap.String("name", entry.Name),
			zap.Int64("total_snacks", entry.TotalSnacks),
		)
	}

	status := reportdomain.RunStatusSucceeded
	if failed > 0 {
		status = reportdomain.RunStatusPartial
	}
	run := finishRun(j.log, j.metrics, NameOrders, started, j.clock.Now().UTC(), target,
		int64(len(boxes)), written, skipped, status,
		map[string]any{"failed_rows": failed, "write_mode": j.cfg.OrderWriteMode})
	recordRun(ctx, j.log, j.sink, run)
	return nil
}
