// Package repository implements the report sink against the
// analytical store via gorm.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	reportdomain "github.com/JWax21/cleanbox-cron/internal/report/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type GormSink struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewGormSink(p Params) reportdomain.Sink {
	return &GormSink{
		db:    p.DB,
		log:   p.Log.Named("report.sink"),
		genID: p.GenID,
	}
}

func (s *GormSink) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&reportdomain.DemandRow{},
		&reportdomain.FrequencyRow{},
		&reportdomain.InternalOrder{},
		&reportdomain.JobRun{},
	)
	if err != nil {
		return fmt.Errorf("migrate report tables: %w", err)
	}
	return nil
}

// UpsertDemand replaces or inserts the whole batch in a single call;
// a transport failure fails every row together.
func (s *GormSink) UpsertDemand(ctx context.Context, rows []reportdomain.DemandRow) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].UpdatedAt = now
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"confirmed", "pending", "projected", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert demand rows: %w", err)
	}
	return nil
}

func (s *GormSink) UpsertFrequency(ctx context.Context, rows []reportdomain.FrequencyRow) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].UpdatedAt = now
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert frequency rows: %w", err)
	}
	return nil
}

func (s *GormSink) PruneDemandExcept(ctx context.Context, skus []string) (int64, error) {
	return s.pruneExcept(ctx, &reportdomain.DemandRow{}, skus)
}

func (s *GormSink) PruneFrequencyExcept(ctx context.Context, skus []string) (int64, error) {
	return s.pruneExcept(ctx, &reportdomain.FrequencyRow{}, skus)
}

func (s *GormSink) pruneExcept(ctx context.Context, model any, skus []string) (int64, error) {
	tx := s.db.WithContext(ctx)
	if len(skus) == 0 {
		// gorm refuses unconditioned deletes.
		tx = tx.Where("sku IS NOT NULL")
	} else {
		tx = tx.Where("sku NOT IN ?", skus)
	}
	result := tx.Delete(model)
	if result.Error != nil {
		return 0, fmt.Errorf("prune stale rows: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormSink) InsertOrder(ctx context.Context, row *reportdomain.InternalOrder) error {
	if row.ID == 0 {
		row.ID = s.genID.Generate()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert internal order for %s: %w", row.CustomerID, err)
	}
	return nil
}

// UpsertOrder reconciles by (customer_id, month) in code because the
// table deliberately carries no unique key there (see InternalOrder).
func (s *GormSink) UpsertOrder(ctx context.Context, row *reportdomain.InternalOrder) error {
	result := s.db.WithContext(ctx).
		Model(&reportdomain.InternalOrder{}).
		Where("customer_id = ? AND month = ?", row.CustomerID, row.Month).
		Updates(map[string]any{
			"name":              row.Name,
			"email":             row.Email,
			"subscription_type": row.SubscriptionType,
			"total_snacks":      row.TotalSnacks,
		})
	if result.Error != nil {
		return fmt.Errorf("upsert internal order for %s: %w", row.CustomerID, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return s.InsertOrder(ctx, row)
}

// RecordRun appends the audit row for one batch run.
func (s *GormSink) RecordRun(ctx context.Context, run *reportdomain.JobRun) error {
	if run.ID == 0 {
		run.ID = s.genID.Generate()
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record job run %s: %w", run.Job, err)
	}
	return nil
}
