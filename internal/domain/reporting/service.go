package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulseiq/pulseiq/pkg/week"
)

// ErrBadSelector means the week selector was not latest, an ISO week or a
// date.
var ErrBadSelector = errors.New("week selector must be latest, an ISO week or a date")

// Service resolves week selectors and assembles summary payloads.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new reporting service
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Summary is one week's KPI block plus its breakdowns.
type Summary struct {
	Week   WeekInfo         `json:"week"`
	Stores []StoreBreakdown `json:"stores"`
	Skus   []SkuBreakdown   `json:"skus"`
}

// ResolveWeek turns a selector into a week. Accepted forms: "latest" (or
// empty), an ISO key like "2025-W33", or any date inside the week as
// YYYY-MM-DD.
func (s *Service) ResolveWeek(ctx context.Context, selector string) (*WeekInfo, error) {
	switch {
	case selector == "" || selector == "latest":
		return s.repo.LatestWeek(ctx)
	default:
		if _, _, err := week.Parse(selector); err == nil {
			return s.repo.WeekByISO(ctx, selector)
		}
		if date, err := time.ParseInLocation("2006-01-02", selector, time.UTC); err == nil {
			return s.repo.WeekByDate(ctx, date)
		}
		return nil, fmt.Errorf("%w: %q", ErrBadSelector, selector)
	}
}

// WeekSummary loads the full summary for the selected week.
func (s *Service) WeekSummary(ctx context.Context, selector string) (*Summary, error) {
	wk, err := s.ResolveWeek(ctx, selector)
	if err != nil {
		return nil, err
	}

	stores, err := s.repo.StoresForWeek(ctx, wk.ID)
	if err != nil {
		return nil, err
	}
	skus, err := s.repo.SkusForWeek(ctx, wk.ID)
	if err != nil {
		return nil, err
	}
	return &Summary{Week: *wk, Stores: stores, Skus: skus}, nil
}

// ListWeeks returns up to two years of weeks, newest first.
func (s *Service) ListWeeks(ctx context.Context) ([]WeekInfo, error) {
	return s.repo.ListWeeks(ctx)
}

// DataHealth returns per-week store allocation coverage, newest first.
func (s *Service) DataHealth(ctx context.Context) ([]HealthRow, error) {
	return s.repo.DataHealth(ctx)
}
