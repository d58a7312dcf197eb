// Package domain contains the rows the jobs publish to the analytical
// store.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"

	"github.com/JWax21/cleanbox-cron/internal/period"
)

// Job run outcomes recorded in fd_job_runs. A partial run finished
// with isolated row failures on an insert-only sink.
const (
	RunStatusSucceeded = "succeeded"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// DemandRow is the status-split projected demand for one SKU, keyed by
// SKU for idempotent replacement across runs.
type DemandRow struct {
	SKU       string    `gorm:"column:sku;primaryKey" json:"sku"`
	Confirmed int64     `gorm:"not null" json:"confirmed"`
	Pending   int64     `gorm:"not null" json:"pending"`
	Projected int64     `gorm:"not null" json:"projected"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

func (DemandRow) TableName() string { return "fd_aggregate_demand_by_snack" }

// FrequencyRow is the active-customer occurrence count for one SKU.
type FrequencyRow struct {
	SKU       string    `gorm:"column:sku;primaryKey" json:"sku"`
	Count     int64     `gorm:"not null" json:"count"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

func (FrequencyRow) TableName() string { return "demand_aggregate" }

// InternalOrder is one customer's snack total for one period. The
// table has no unique key on (customer_id, month): the default write
// mode appends a row per run, so upsert mode reconciles in code.
type InternalOrder struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID       string        `gorm:"type:text;not null;index" json:"customer_id"`
	Name             string        `gorm:"type:text;not null" json:"name"`
	Email            string        `gorm:"type:text;not null" json:"email"`
	SubscriptionType string        `gorm:"type:text" json:"subscription_type"`
	Month            period.Period `gorm:"not null;index" json:"month"`
	TotalSnacks      int64         `gorm:"not null" json:"total_snacks"`
	CreatedAt        time.Time     `gorm:"not null" json:"created_at"`
}

func (InternalOrder) TableName() string { return "fd_internal_orders" }

// JobRun is the audit record written at the end of every batch run.
type JobRun struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Job         string            `gorm:"type:text;not null" json:"job"`
	Period      period.Period     `gorm:"not null" json:"period"`
	RecordsRead int64             `gorm:"not null" json:"records_read"`
	RowsWritten int64             `gorm:"not null" json:"rows_written"`
	Skipped     int64             `gorm:"not null" json:"skipped"`
	Status      string            `gorm:"type:text;not null" json:"status"`
	Stats       datatypes.JSONMap `gorm:"type:jsonb" json:"stats"`
	StartedAt   time.Time         `gorm:"not null" json:"started_at"`
	FinishedAt  time.Time         `gorm:"not null" json:"finished_at"`
}

func (JobRun) TableName() string { return "fd_job_runs" }
