// Package batch ingests a directory of weekly export workbooks, grouping
// files by the week-end date embedded in their names.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/service"
)

// fileDate pulls the week-end date out of an export name like
// Store_Sales-2025-08-17.xlsx or Sales_Inv_Perf__Weekly-2025-08-17_2.xlsx.
var fileDate = regexp.MustCompile(`-(\d{4}-\d{2}-\d{2})(?:_\d+)?\.xlsx$`)

var allocatorName = regexp.MustCompile(`(?i)sales[-_ ]inv[-_ ]perf`)

// WeekRun reports one week's ingest within a batch.
type WeekRun struct {
	WeekEnd  time.Time       `json:"weekEnd"`
	Files    []string        `json:"files"`
	Result   *service.Result `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Runner drives the ingest service over files on disk.
type Runner struct {
	svc    *service.Service
	logger *slog.Logger
}

// NewRunner creates a new batch runner
func NewRunner(svc *service.Service, logger *slog.Logger) *Runner {
	return &Runner{svc: svc, logger: logger}
}

// IngestDir ingests every dated xlsx file under dir, one service call per
// week-end date, oldest week first. Files whose names carry no date are
// skipped. A week without a sales performance file still ingests (the
// pipeline falls back to the pseudo SKU) but is flagged with a warning.
func (r *Runner) IngestDir(ctx context.Context, dir string) ([]WeekRun, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingest directory: %w", err)
	}

	groups := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xlsx") {
			continue
		}
		m := fileDate.FindStringSubmatch(e.Name())
		if m == nil {
			r.logger.Warn("file name carries no week-end date, skipped",
				slog.String("file", e.Name()))
			continue
		}
		groups[m[1]] = append(groups[m[1]], e.Name())
	}

	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var runs []WeekRun
	for _, date := range dates {
		weekEnd, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			// Unreachable given the regexp, but a bad date should not
			// abort the rest of the batch.
			r.logger.Warn("bad date in file name", slog.String("date", date))
			continue
		}

		run := WeekRun{WeekEnd: weekEnd, Files: groups[date]}
		if !hasAllocator(run.Files) {
			run.Warnings = append(run.Warnings,
				fmt.Sprintf("%s: no sales performance file, SKU breakdown will be the pseudo SKU", date))
		}

		run.Result, err = r.ingestGroup(ctx, dir, weekEnd, run.Files)
		if err != nil {
			run.Error = err.Error()
			r.logger.Error("week ingest failed",
				slog.String("week_end", date),
				slog.Any("error", err))
		}
		runs = append(runs, run)
	}

	return runs, nil
}

func (r *Runner) ingestGroup(ctx context.Context, dir string, weekEnd time.Time, names []string) (*service.Result, error) {
	files := make([]service.FileInput, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		files = append(files, service.FileInput{Name: name, Data: data})
	}
	return r.svc.IngestFiles(ctx, weekEnd, files)
}

func hasAllocator(names []string) bool {
	for _, name := range names {
		if allocatorName.MatchString(name) {
			return true
		}
	}
	return false
}
