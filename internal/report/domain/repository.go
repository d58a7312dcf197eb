package domain

import "context"

// Sink publishes aggregate rows to the analytical store. Upserts send
// the whole batch in one call and fail together; order writes are one
// row per call so a failure stays isolated to that row.
type Sink interface {
	Migrate(ctx context.Context) error

	UpsertDemand(ctx context.Context, rows []DemandRow) error
	UpsertFrequency(ctx context.Context, rows []FrequencyRow) error

	// PruneDemandExcept and PruneFrequencyExcept delete rows whose SKU
	// is absent from the current run, for the prune retention policy.
	PruneDemandExcept(ctx context.Context, skus []string) (int64, error)
	PruneFrequencyExcept(ctx context.Context, skus []string) (int64, error)

	InsertOrder(ctx context.Context, row *InternalOrder) error
	UpsertOrder(ctx context.Context, row *InternalOrder) error

	RecordRun(ctx context.Context, run *JobRun) error
}
