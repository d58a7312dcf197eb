// Package job wires the fetch, join, aggregate, and publish phases
// into the three batch runs.
package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/JWax21/cleanbox-cron/internal/clock"
	"github.com/JWax21/cleanbox-cron/internal/config"
	draftboxdomain "github.com/JWax21/cleanbox-cron/internal/draftbox/domain"
	"github.com/JWax21/cleanbox-cron/internal/observability/metrics"
	"github.com/JWax21/cleanbox-cron/internal/period"
	reportdomain "github.com/JWax21/cleanbox-cron/internal/report/domain"
)

// Command-line names of the batch jobs.
const (
	NameDemand    = "demand"
	NameFrequency = "frequency"
	NameOrders    = "orders"
)

// Job is one batch run: fetch, join, aggregate, publish.
type Job interface {
	Name() string
	Run(ctx context.Context, target period.Period) error
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Source  draftboxdomain.Source
	Sink    reportdomain.Sink
	Cfg     config.Config
	Metrics *metrics.JobMetrics
	Clock   clock.Clock
}

// Registry resolves a job by its command-line name.
type Registry struct {
	jobs map[string]Job
}

func NewRegistry(demand *Demand, frequency *Frequency, orders *Orders) *Registry {
	return &Registry{jobs: map[string]Job{
		demand.Name():    demand,
		frequency.Name(): frequency,
		orders.Name():    orders,
	}}
}

func (r *Registry) Lookup(name string) (Job, error) {
	j, ok := r.jobs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown job %q: want %s, %s, or %s", name, NameDemand, NameFrequency, NameOrders)
	}
	return j, nil
}

// fetchJoinInput reads the period's draft boxes and resolves their
// customers in one query.
func fetchJoinInput(ctx context.Context, source draftboxdomain.Source, target period.Period) ([]draftboxdomain.DraftBox, map[string]draftboxdomain.Customer, error) {
	boxes, err := source.DraftBoxesByPeriod(ctx, target)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch draft boxes: %w", err)
	}

	seen := make(map[string]struct{}, len(boxes))
	ids := make([]string, 0, len(boxes))
	for _, box := range boxes {
		id := strings.TrimSpace(box.CustomerID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	customers, err := source.CustomersByID(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch customers: %w", err)
	}
	return boxes, customers, nil
}

// recordRun writes the audit row best-effort: a failure to record a
// run never changes the run's outcome.
func recordRun(ctx context.Context, log *zap.Logger, sink reportdomain.Sink, run reportdomain.JobRun) {
	if err := sink.RecordRun(ctx, &run); err != nil {
		log.Warn("failed to record job run", zap.String("job", run.Job), zap.Error(err))
	}
}

func runStats(extra map[string]any) datatypes.JSONMap {
	stats := datatypes.JSONMap{}
	for key, value := range extra {
		stats[key] = value
	}
	return stats
}

func finishRun(
	log *zap.Logger,
	m *metrics.JobMetrics,
	job string,
	started time.Time,
	now time.Time,
	target period.Period,
	read, written, skipped int64,
	status string,
	extra map[string]any,
) reportdomain.JobRun {
	result := "success"
	if status == reportdomain.RunStatusFailed {
		result = "failed"
	}
	m.ObserveRunDuration(job, result, now.Sub(started))
	log.Info("run finished",
		zap.String("job", job),
		zap.Stringer("period", target),
		zap.String("status", status),
		zap.Int64("records_read", read),
		zap.Int64("rows_written", written),
		zap.Int64("skipped", skipped),
		zap.Duration("took", now.Sub(started)),
	)
	return reportdomain.JobRun{
		Job:         job,
		Period:      target,
		RecordsRead: read,
		RowsWritten: written,
		Skipped:     skipped,
		Status:      status,
		Stats:       runStats(extra),
		StartedAt:   started,
		FinishedAt:  now,
	}
}
