package reporting

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	weeks  []WeekInfo
	stores map[uuid.UUID][]StoreBreakdown
	skus   map[uuid.UUID][]SkuBreakdown
	health []HealthRow
}

func (f *fakeReportRepo) ListWeeks(context.Context) ([]WeekInfo, error) { return f.weeks, nil }

func (f *fakeReportRepo) WeekByISO(_ context.Context, iso string) (*WeekInfo, error) {
	for i := range f.weeks {
		if f.weeks[i].ISO == iso {
			return &f.weeks[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReportRepo) WeekByDate(_ context.Context, date time.Time) (*WeekInfo, error) {
	for i := range f.weeks {
		w := f.weeks[i]
		if !date.Before(w.StartDate) && !date.After(w.EndDate) {
			return &w, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReportRepo) LatestWeek(context.Context) (*WeekInfo, error) {
	if len(f.weeks) == 0 {
		return nil, sql.ErrNoRows
	}
	return &f.weeks[0], nil
}

func (f *fakeReportRepo) StoresForWeek(_ context.Context, weekID uuid.UUID) ([]StoreBreakdown, error) {
	return f.stores[weekID], nil
}

func (f *fakeReportRepo) SkusForWeek(_ context.Context, weekID uuid.UUID) ([]SkuBreakdown, error) {
	return f.skus[weekID], nil
}

func (f *fakeReportRepo) DataHealth(context.Context) ([]HealthRow, error) { return f.health, nil }

func testWeeks() []WeekInfo {
	mk := func(iso string, end time.Time) WeekInfo {
		return WeekInfo{
			ID:        uuid.New(),
			ISO:       iso,
			StartDate: end.AddDate(0, 0, -6),
			EndDate:   end,
			Revenue:   decimal.Zero,
		}
	}
	return []WeekInfo{
		mk("2025-W33", time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)),
		mk("2025-W32", time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)),
	}
}

func newTestService() (*Service, *fakeReportRepo) {
	repo := &fakeReportRepo{
		weeks:  testWeeks(),
		stores: make(map[uuid.UUID][]StoreBreakdown),
		skus:   make(map[uuid.UUID][]SkuBreakdown),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func TestResolveWeek(t *testing.T) {
	ctx := context.Background()

	t.Run("empty and latest pick the newest week", func(t *testing.T) {
		svc, _ := newTestService()

		for _, selector := range []string{"", "latest"} {
			wk, err := svc.ResolveWeek(ctx, selector)
			require.NoError(t, err)
			assert.Equal(t, "2025-W33", wk.ISO)
		}
	})

	t.Run("ISO key selects that week", func(t *testing.T) {
		svc, _ := newTestService()

		wk, err := svc.ResolveWeek(ctx, "2025-W32")
		require.NoError(t, err)
		assert.Equal(t, "2025-W32", wk.ISO)
	})

	t.Run("a date selects its containing week", func(t *testing.T) {
		svc, _ := newTestService()

		wk, err := svc.ResolveWeek(ctx, "2025-08-06")
		require.NoError(t, err)
		assert.Equal(t, "2025-W32", wk.ISO)
	})

	t.Run("garbage selector is rejected", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.ResolveWeek(ctx, "yesterday")
		assert.ErrorIs(t, err, ErrBadSelector)
	})

	t.Run("unknown week propagates not found", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.ResolveWeek(ctx, "1999-W01")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestWeekSummary(t *testing.T) {
	svc, repo := newTestService()

	weekID := repo.weeks[0].ID
	repo.stores[weekID] = []StoreBreakdown{
		{StoreCode: "101", StoreName: "Downtown", Units: 30, Revenue: decimal.NewFromInt(300)},
	}
	repo.skus[weekID] = []SkuBreakdown{
		{UPC: "123456789012", Name: "Lip Gloss", Units: 40, Revenue: decimal.NewFromInt(400)},
	}

	got, err := svc.WeekSummary(context.Background(), "latest")
	require.NoError(t, err)
	assert.Equal(t, "2025-W33", got.Week.ISO)
	require.Len(t, got.Stores, 1)
	assert.Equal(t, "101", got.Stores[0].StoreCode)
	require.Len(t, got.Skus, 1)
	assert.Equal(t, "123456789012", got.Skus[0].UPC)
}
