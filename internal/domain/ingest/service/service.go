// Package service orchestrates the weekly ingest: classify uploaded
// workbooks, parse them, allocate chain-wide SKU totals to stores and write
// the resulting facts.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/allocation"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/parser"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/repository"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/workbook"
	"github.com/pulseiq/pulseiq/pkg/metrics"
	"github.com/pulseiq/pulseiq/pkg/storage"
	"github.com/pulseiq/pulseiq/pkg/week"
)

// ErrNoStoreTotals means the upload contained no usable store sales file, so
// there is nothing to allocate against.
var ErrNoStoreTotals = errors.New("no usable store sales file in upload")

// File classification by filename. The retailer's export names are stable
// even when everything inside the workbook moves around.
var (
	storeSalesName = regexp.MustCompile(`(?i)store[-_ ]sales`)
	allocatorName  = regexp.MustCompile(`(?i)sales[-_ ]inv[-_ ]perf`)
)

// FileKind classifies one uploaded file.
type FileKind string

const (
	KindStoreTotals FileKind = "store-totals"
	KindAllocator   FileKind = "allocator"
	KindIgnored     FileKind = "ignored"
	KindError       FileKind = "error"
)

// FileInput is one uploaded workbook.
type FileInput struct {
	Name string
	Data []byte
}

// FileDetail reports what happened to one uploaded file.
type FileDetail struct {
	Name        string              `json:"name"`
	Kind        FileKind            `json:"kind"`
	Sheet       string              `json:"sheet,omitempty"`
	Rows        int                 `json:"rows"`
	Error       string              `json:"error,omitempty"`
	Diagnostics []parser.Diagnostic `json:"diagnostics,omitempty"`
}

// Result summarizes one ingest run.
type Result struct {
	Week     string       `json:"week"`
	Files    int          `json:"files"`
	Rows     int          `json:"rows"`
	Inserted int          `json:"inserted"`
	Skipped  int          `json:"skipped"`
	Details  []FileDetail `json:"details"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Service runs the ingest pipeline against a fact repository.
type Service struct {
	repo    repository.IngestRepository
	archive storage.Archive
	logger  *slog.Logger
}

// NewService creates a new ingest service
func NewService(repo repository.IngestRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// WithArchive makes the service keep a copy of every parsed upload.
func (s *Service) WithArchive(archive storage.Archive) *Service {
	s.archive = archive
	return s
}

// IngestFiles processes one upload for the week ending on weekEnd. All store
// sales files contribute store totals; the first sales performance file
// supplies the SKU breakdown and any further ones are ignored with a
// warning. Returns ErrNoStoreTotals when no store sales file parsed.
func (s *Service) IngestFiles(ctx context.Context, weekEnd time.Time, files []FileInput) (*Result, error) {
	started := time.Now()
	defer func() { metrics.IngestDuration.Observe(time.Since(started).Seconds()) }()

	iso := week.Key(weekEnd)
	res := &Result{Week: iso, Files: len(files)}

	var stores []parser.StoreTotal
	storeSeen := make(map[string]bool)
	var skus []parser.SkuTotal
	haveAllocator := false

	for _, f := range files {
		detail := s.processFile(f, &stores, storeSeen, &skus, &haveAllocator, res)
		metrics.FilesIngested.WithLabelValues(string(detail.Kind)).Inc()
		res.Details = append(res.Details, detail)
	}

	if len(stores) == 0 {
		return nil, ErrNoStoreTotals
	}

	allocated := allocation.Allocate(stores, skus)
	res.Rows = len(allocated)

	inserted, skipped, err := s.insertFacts(ctx, weekEnd, iso, allocated)
	if err != nil {
		return nil, err
	}
	res.Inserted = inserted
	res.Skipped = skipped

	s.archiveUpload(ctx, iso, files, res.Details)

	s.logger.InfoContext(ctx, "ingest complete",
		slog.String("week", iso),
		slog.Int("files", res.Files),
		slog.Int("stores", len(stores)),
		slog.Int("skus", len(skus)),
		slog.Int("rows", res.Rows),
		slog.Int("inserted", inserted),
		slog.Int("skipped", skipped),
	)
	return res, nil
}

func (s *Service) processFile(f FileInput, stores *[]parser.StoreTotal, storeSeen map[string]bool, skus *[]parser.SkuTotal, haveAllocator *bool, res *Result) FileDetail {
	switch {
	case storeSalesName.MatchString(f.Name):
		return s.processStoreSales(f, stores, storeSeen, res)
	case allocatorName.MatchString(f.Name):
		if *haveAllocator {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: extra sales performance file ignored, only the first is used", f.Name))
			return FileDetail{Name: f.Name, Kind: KindIgnored}
		}
		return s.processAllocator(f, skus, haveAllocator)
	default:
		return FileDetail{Name: f.Name, Kind: KindIgnored}
	}
}

func (s *Service) processStoreSales(f FileInput, stores *[]parser.StoreTotal, storeSeen map[string]bool, res *Result) FileDetail {
	wb, err := workbook.Open(bytes.NewReader(f.Data))
	if err != nil {
		return FileDetail{Name: f.Name, Kind: KindError, Error: err.Error()}
	}
	defer wb.Close()

	parsed, err := parser.ParseStoreSales(wb)
	if err != nil {
		return FileDetail{Name: f.Name, Kind: KindError, Error: err.Error()}
	}

	kept := 0
	for _, st := range parsed.Stores {
		if storeSeen[st.StoreCode] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: store %s already seen in an earlier file, row ignored", f.Name, st.StoreCode))
			continue
		}
		storeSeen[st.StoreCode] = true
		*stores = append(*stores, st)
		kept++
	}

	return FileDetail{
		Name:        f.Name,
		Kind:        KindStoreTotals,
		Sheet:       parsed.Sheet,
		Rows:        kept,
		Diagnostics: parsed.Diagnostics,
	}
}

func (s *Service) processAllocator(f FileInput, skus *[]parser.SkuTotal, haveAllocator *bool) FileDetail {
	wb, err := workbook.Open(bytes.NewReader(f.Data))
	if err != nil {
		return FileDetail{Name: f.Name, Kind: KindError, Error: err.Error()}
	}
	defer wb.Close()

	parsed, err := parser.ParseSkuPerf(wb)
	if err != nil {
		return FileDetail{Name: f.Name, Kind: KindError, Error: err.Error()}
	}

	*haveAllocator = true
	*skus = parsed.Skus
	return FileDetail{
		Name:        f.Name,
		Kind:        KindAllocator,
		Sheet:       parsed.Sheet,
		Rows:        len(parsed.Skus),
		Diagnostics: parsed.Diagnostics,
	}
}

// archiveUpload keeps a copy of the files that contributed data. Archive
// failures are logged, not surfaced: the facts are already in.
func (s *Service) archiveUpload(ctx context.Context, iso string, files []FileInput, details []FileDetail) {
	if s.archive == nil {
		return
	}
	for i, f := range files {
		if details[i].Kind != KindStoreTotals && details[i].Kind != KindAllocator {
			continue
		}
		if _, err := s.archive.Save(ctx, iso, f.Name, bytes.NewReader(f.Data)); err != nil {
			s.logger.Warn("failed to archive upload",
				slog.String("file", f.Name),
				slog.Any("error", err),
			)
		}
	}
}

// DeleteWeek removes a week's facts, optionally restricted to storeCodes.
// When the whole week empties out the week dimension row goes with it. Used
// by the cleanup endpoint to back out a bad upload.
func (s *Service) DeleteWeek(ctx context.Context, iso string, storeCodes []string) (int64, bool, error) {
	wk, err := s.repo.WeekByISO(ctx, iso)
	if err != nil {
		return 0, false, err
	}

	deleted, err := s.repo.DeleteWeekFacts(ctx, wk.ID, storeCodes)
	if err != nil {
		return 0, false, err
	}
	weekGone, err := s.repo.DeleteWeekIfEmpty(ctx, wk.ID)
	if err != nil {
		return 0, false, err
	}

	s.logger.InfoContext(ctx, "week cleanup",
		slog.String("week", iso),
		slog.Int64("facts_deleted", deleted),
		slog.Bool("week_deleted", weekGone),
	)
	return deleted, weekGone, nil
}

// insertFacts persists the allocated rows for the week ending on weekEnd.
// Dimensions are ensured first, then inserts are deduplicated twice: against
// the pairs already in the database and against repeats inside this batch.
// The unique constraint on (week_id, store_id, sku_id) backstops both.
func (s *Service) insertFacts(ctx context.Context, weekEnd time.Time, iso string, rows []allocation.Allocated) (inserted, skipped int, err error) {
	year, _, err := week.Parse(iso)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week key %q: %w", iso, err)
	}
	start, end := week.Span(weekEnd)

	weekID, err := s.repo.EnsureWeek(ctx, iso, year, start, end)
	if err != nil {
		return 0, 0, err
	}

	storeIDs := make(map[string]uuid.UUID)
	skuIDs := make(map[string]uuid.UUID)
	for _, r := range rows {
		if _, ok := storeIDs[r.StoreCode]; !ok {
			id, err := s.repo.EnsureStore(ctx, r.StoreCode, r.StoreName)
			if err != nil {
				return 0, 0, err
			}
			storeIDs[r.StoreCode] = id
		}
		if _, ok := skuIDs[r.UPC]; !ok {
			id, err := s.repo.EnsureSku(ctx, r.UPC, r.SkuName)
			if err != nil {
				return 0, 0, err
			}
			skuIDs[r.UPC] = id
		}
	}

	existing, err := s.repo.ExistingFactPairs(ctx, weekID)
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[repository.FactKey]bool, len(rows))
	for _, r := range rows {
		key := repository.FactKey{StoreID: storeIDs[r.StoreCode], SkuID: skuIDs[r.UPC]}
		if existing[key] || seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		ok, err := s.repo.InsertFact(ctx, repository.Fact{
			WeekID:  weekID,
			StoreID: key.StoreID,
			SkuID:   key.SkuID,
			Units:   r.Units,
			Revenue: r.Revenue,
		})
		if err != nil {
			return 0, 0, err
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	metrics.FactsInserted.Add(float64(inserted))
	metrics.FactsSkipped.Add(float64(skipped))
	return inserted, skipped, nil
}
