package domain

import (
	"context"

	"github.com/JWax21/cleanbox-cron/internal/period"
)

// Source reads draft boxes and customers from the operational store.
// A failed fetch is fatal to the run; per-document join misses are
// handled downstream.
type Source interface {
	DraftBoxesByPeriod(ctx context.Context, p period.Period) ([]DraftBox, error)
	CustomersByID(ctx context.Context, ids []string) (map[string]Customer, error)
}
