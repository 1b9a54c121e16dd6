// Package seed fills an empty database with plausible demo data so the
// dashboard has something to show before real exports arrive.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/repository"
	"github.com/pulseiq/pulseiq/pkg/week"
)

// Seeder writes generated weeks of facts through the ingest repository.
type Seeder struct {
	repo   repository.IngestRepository
	faker  *gofakeit.Faker
	logger *slog.Logger
}

// NewSeeder creates a new demo seeder. The same seed value reproduces the
// same dataset.
func NewSeeder(repo repository.IngestRepository, seedValue int64, logger *slog.Logger) *Seeder {
	return &Seeder{
		repo:   repo,
		faker:  gofakeit.New(seedValue),
		logger: logger,
	}
}

// Run seeds weeks complete weeks ending with the latest one, stores stores
// and skus SKUs, and a fact for every (week, store, sku) combination.
func (s *Seeder) Run(ctx context.Context, weeks, stores, skus int) error {
	now := time.Now().UTC()
	isoWeeks := week.Backfill(week.LatestComplete(now), weeks)

	storeIDs, err := s.seedStores(ctx, stores)
	if err != nil {
		return err
	}
	skuIDs, err := s.seedSkus(ctx, skus)
	if err != nil {
		return err
	}

	inserted := 0
	for _, iso := range isoWeeks {
		year, wk, err := week.Parse(iso)
		if err != nil {
			return fmt.Errorf("bad week key %s: %w", iso, err)
		}
		start := week.Monday(year, wk)
		weekID, err := s.repo.EnsureWeek(ctx, iso, year, start, start.AddDate(0, 0, 6))
		if err != nil {
			return err
		}

		for _, storeID := range storeIDs {
			for _, skuID := range skuIDs {
				units := s.faker.Number(0, 120)
				price := decimal.NewFromFloat(s.faker.Price(4, 80))
				ok, err := s.repo.InsertFact(ctx, repository.Fact{
					WeekID:  weekID,
					StoreID: storeID,
					SkuID:   skuID,
					Units:   units,
					Revenue: price.Mul(decimal.NewFromInt(int64(units))),
				})
				if err != nil {
					return err
				}
				if ok {
					inserted++
				}
			}
		}
	}

	s.logger.Info("demo data seeded",
		slog.Int("weeks", len(isoWeeks)),
		slog.Int("stores", len(storeIDs)),
		slog.Int("skus", len(skuIDs)),
		slog.Int("facts_inserted", inserted),
	)
	return nil
}

func (s *Seeder) seedStores(ctx context.Context, n int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("%d", 100+i)
		name := s.faker.City()
		id, err := s.repo.EnsureStore(ctx, code, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Seeder) seedSkus(ctx context.Context, n int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		upc := fmt.Sprintf("%012d", s.faker.Number(100000000, 999999999))
		name := s.faker.ProductName()
		id, err := s.repo.EnsureSku(ctx, upc, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
