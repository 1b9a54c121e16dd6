// Package repository provides database operations for the sales fact store.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Week is one ISO week dimension row.
type Week struct {
	ID        uuid.UUID
	ISO       string
	Year      int
	StartDate time.Time
	EndDate   time.Time
}

// Store is one store dimension row. City and state are only populated by the
// demo seeder; the retailer's exports do not carry them.
type Store struct {
	ID    uuid.UUID
	Code  string
	Name  string
	City  *string
	State *string
}

// Sku is one SKU dimension row.
type Sku struct {
	ID    uuid.UUID
	UPC   string
	Name  string
	Brand *string
}

// Fact is one store and SKU's figures for a week.
type Fact struct {
	ID      uuid.UUID
	WeekID  uuid.UUID
	StoreID uuid.UUID
	SkuID   uuid.UUID
	Units   int
	Revenue decimal.Decimal
}

// FactKey identifies a fact inside one week.
type FactKey struct {
	StoreID uuid.UUID
	SkuID   uuid.UUID
}

// IngestRepository defines the persistence operations the ingest pipeline
// needs. Dimension ensures are upserts returning the surviving row's id;
// an existing row keeps its original attributes.
type IngestRepository interface {
	EnsureWeek(ctx context.Context, iso string, year int, start, end time.Time) (uuid.UUID, error)
	EnsureStore(ctx context.Context, code, name string) (uuid.UUID, error)
	EnsureSku(ctx context.Context, upc, name string) (uuid.UUID, error)

	// ExistingFactPairs returns the (store, sku) pairs already recorded for
	// the week, so re-ingesting a file is a no-op.
	ExistingFactPairs(ctx context.Context, weekID uuid.UUID) (map[FactKey]bool, error)

	// InsertFact writes one fact and reports whether a row was actually
	// inserted. A duplicate (week, store, sku) is silently skipped.
	InsertFact(ctx context.Context, fact Fact) (bool, error)

	WeekByISO(ctx context.Context, iso string) (*Week, error)
	LatestWeek(ctx context.Context) (*Week, error)

	// DeleteWeekFacts removes the week's facts, optionally restricted to the
	// given store codes, and returns the number of rows removed.
	DeleteWeekFacts(ctx context.Context, weekID uuid.UUID, storeCodes []string) (int64, error)

	// DeleteWeekIfEmpty drops the week dimension row when no facts reference
	// it anymore.
	DeleteWeekIfEmpty(ctx context.Context, weekID uuid.UUID) (bool, error)
}
