// Package config loads job configuration from the environment. The
// three connection values are required and checked before any store
// is touched; everything else has a default.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Demand retention policies for the SKU-aggregate sinks. Retain keeps
// rows for SKUs absent from the current run; prune deletes them.
const (
	RetentionRetain = "retain"
	RetentionPrune  = "prune"
)

// Write modes for the internal-orders sink. Insert appends one row per
// run; upsert replaces the row keyed by (customer, period).
const (
	OrderWriteInsert = "insert"
	OrderWriteUpsert = "upsert"
)

type Config struct {
	Environment string

	MongoURI      string
	MongoDatabase string

	SupabaseDBURL      string
	SupabaseDBPassword string

	DemandRetention string
	OrderWriteMode  string
}

func (c Config) IsProduction() bool { return c.Environment == "production" }

// Load reads the environment and validates required values.
func Load() (Config, error) {
	cfg := Config{
		Environment:        getenv("ENVIRONMENT", "development"),
		MongoURI:           strings.TrimSpace(os.Getenv("MONGO_CONNECTION_STRING")),
		MongoDatabase:      getenv("MONGO_DATABASE", "Boxes"),
		SupabaseDBURL:      strings.TrimSpace(os.Getenv("SUPABASE_DB_URL")),
		SupabaseDBPassword: os.Getenv("SUPABASE_DB_PASSWORD"),
		DemandRetention:    getenv("DEMAND_RETENTION", RetentionRetain),
		OrderWriteMode:     getenv("ORDER_WRITE_MODE", OrderWriteInsert),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_CONNECTION_STRING")
	}
	if c.SupabaseDBURL == "" {
		missing = append(missing, "SUPABASE_DB_URL")
	}
	if c.SupabaseDBPassword == "" {
		missing = append(missing, "SUPABASE_DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.DemandRetention {
	case RetentionRetain, RetentionPrune:
	default:
		return fmt.Errorf("invalid DEMAND_RETENTION %q: must be %s or %s", c.DemandRetention, RetentionRetain, RetentionPrune)
	}

	switch c.OrderWriteMode {
	case OrderWriteInsert, OrderWriteUpsert:
	default:
		return fmt.Errorf("invalid ORDER_WRITE_MODE %q: must be %s or %s", c.OrderWriteMode, OrderWriteInsert, OrderWriteUpsert)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
