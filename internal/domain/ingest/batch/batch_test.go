package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/ingesttest"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/service"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func newTestRunner() (*Runner, *ingesttest.FakeRepo) {
	repo := ingesttest.NewFakeRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(service.NewService(repo, logger), logger), repo
}

func TestIngestDir(t *testing.T) {
	ctx := context.Background()

	storeData := func() []byte {
		return ingesttest.StoreSalesBytes(t,
			ingesttest.StoreRow{Code: "101", Name: "Downtown", Units: 10, Revenue: 100},
		)
	}
	allocData := func() []byte {
		return ingesttest.AllocatorBytes(t,
			ingesttest.SkuRow{UPC: "123456789012", Name: "Lip Gloss", Units: 4, Revenue: 40},
		)
	}

	t.Run("groups files by week-end date", func(t *testing.T) {
		runner, repo := newTestRunner()
		dir := t.TempDir()
		writeFile(t, dir, "Store_Sales-2025-08-10.xlsx", storeData())
		writeFile(t, dir, "Sales_Inv_Perf__Weekly-2025-08-10.xlsx", allocData())
		writeFile(t, dir, "Store_Sales-2025-08-17.xlsx", storeData())
		writeFile(t, dir, "Sales_Inv_Perf__Weekly-2025-08-17.xlsx", allocData())

		runs, err := runner.IngestDir(ctx, dir)
		require.NoError(t, err)
		require.Len(t, runs, 2)

		// Oldest week first.
		assert.Equal(t, "2025-08-10", runs[0].WeekEnd.Format("2006-01-02"))
		assert.Equal(t, "2025-08-17", runs[1].WeekEnd.Format("2006-01-02"))
		for _, run := range runs {
			require.NotNil(t, run.Result)
			assert.Equal(t, 1, run.Result.Inserted)
			assert.Empty(t, run.Error)
		}
		assert.Contains(t, repo.Weeks, "2025-W32")
		assert.Contains(t, repo.Weeks, "2025-W33")
	})

	t.Run("flags weeks without a sales performance file", func(t *testing.T) {
		runner, _ := newTestRunner()
		dir := t.TempDir()
		writeFile(t, dir, "Store_Sales-2025-08-17.xlsx", storeData())

		runs, err := runner.IngestDir(ctx, dir)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.Len(t, runs[0].Warnings, 1)
		assert.Contains(t, runs[0].Warnings[0], "pseudo SKU")
		require.NotNil(t, runs[0].Result)
		assert.Equal(t, 1, runs[0].Result.Inserted)
	})

	t.Run("skips undated and non-xlsx files", func(t *testing.T) {
		runner, _ := newTestRunner()
		dir := t.TempDir()
		writeFile(t, dir, "Store_Sales-2025-08-17.xlsx", storeData())
		writeFile(t, dir, "Store_Sales.xlsx", storeData())
		writeFile(t, dir, "readme.txt", []byte("hi"))

		runs, err := runner.IngestDir(ctx, dir)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, []string{"Store_Sales-2025-08-17.xlsx"}, runs[0].Files)
	})

	t.Run("a failing week does not abort the batch", func(t *testing.T) {
		runner, repo := newTestRunner()
		dir := t.TempDir()
		// Only an allocator for W32: no store totals, that week fails.
		writeFile(t, dir, "Sales_Inv_Perf__Weekly-2025-08-10.xlsx", allocData())
		writeFile(t, dir, "Store_Sales-2025-08-17.xlsx", storeData())

		runs, err := runner.IngestDir(ctx, dir)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.NotEmpty(t, runs[0].Error)
		assert.Empty(t, runs[1].Error)
		assert.NotContains(t, repo.Weeks, "2025-W32")
		assert.Contains(t, repo.Weeks, "2025-W33")
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		runner, _ := newTestRunner()
		_, err := runner.IngestDir(ctx, "/does/not/exist")
		assert.Error(t, err)
	})
}
