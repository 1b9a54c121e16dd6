// End to end flow over the real router: upload a week's exports, read it
// back through the reporting endpoints, then clean it up. The database is
// replaced by in-memory fakes; everything HTTP is real.
package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ingesthandler "github.com/pulseiq/pulseiq/internal/domain/ingest/handler"
	"github.com/pulseiq/pulseiq/internal/domain/ingest/ingesttest"
	ingestservice "github.com/pulseiq/pulseiq/internal/domain/ingest/service"
	"github.com/pulseiq/pulseiq/internal/domain/reporting"
	"github.com/pulseiq/pulseiq/internal/server"
	"github.com/pulseiq/pulseiq/pkg/config"
)

// reportingFake serves the reporting queries straight off the ingest fake's
// maps.
type reportingFake struct {
	repo *ingesttest.FakeRepo
}

func (r *reportingFake) weekInfo(iso string) *reporting.WeekInfo {
	wk, ok := r.repo.Weeks[iso]
	if !ok {
		return nil
	}
	info := &reporting.WeekInfo{
		ID:        wk.ID,
		ISO:       wk.ISO,
		StartDate: wk.StartDate,
		EndDate:   wk.EndDate,
	}
	for _, fact := range r.repo.Facts[wk.ID] {
		info.FactRows++
		info.Units += int64(fact.Units)
		info.Revenue = info.Revenue.Add(fact.Revenue)
	}
	return info
}

func (r *reportingFake) ListWeeks(context.Context) ([]reporting.WeekInfo, error) {
	var isos []string
	for iso := range r.repo.Weeks {
		isos = append(isos, iso)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(isos)))

	var out []reporting.WeekInfo
	for _, iso := range isos {
		out = append(out, *r.weekInfo(iso))
	}
	return out, nil
}

func (r *reportingFake) WeekByISO(_ context.Context, iso string) (*reporting.WeekInfo, error) {
	if info := r.weekInfo(iso); info != nil {
		return info, nil
	}
	return nil, sql.ErrNoRows
}

func (r *reportingFake) WeekByDate(_ context.Context, date time.Time) (*reporting.WeekInfo, error) {
	for iso, wk := range r.repo.Weeks {
		if !date.Before(wk.StartDate) && !date.After(wk.EndDate) {
			return r.weekInfo(iso), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *reportingFake) LatestWeek(ctx context.Context) (*reporting.WeekInfo, error) {
	weeks, _ := r.ListWeeks(ctx)
	if len(weeks) == 0 {
		return nil, sql.ErrNoRows
	}
	return &weeks[0], nil
}

func (r *reportingFake) StoresForWeek(_ context.Context, weekID uuid.UUID) ([]reporting.StoreBreakdown, error) {
	byStore := make(map[uuid.UUID]*reporting.StoreBreakdown)
	codes := make(map[uuid.UUID]string)
	for code, id := range r.repo.Stores {
		codes[id] = code
	}
	for _, fact := range r.repo.Facts[weekID] {
		b, ok := byStore[fact.StoreID]
		if !ok {
			b = &reporting.StoreBreakdown{StoreCode: codes[fact.StoreID]}
			byStore[fact.StoreID] = b
		}
		b.Units += int64(fact.Units)
		b.Revenue = b.Revenue.Add(fact.Revenue)
	}
	var out []reporting.StoreBreakdown
	for _, b := range byStore {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreCode < out[j].StoreCode })
	return out, nil
}

func (r *reportingFake) SkusForWeek(_ context.Context, weekID uuid.UUID) ([]reporting.SkuBreakdown, error) {
	bySku := make(map[uuid.UUID]*reporting.SkuBreakdown)
	upcs := make(map[uuid.UUID]string)
	for upc, id := range r.repo.Skus {
		upcs[id] = upc
	}
	for _, fact := range r.repo.Facts[weekID] {
		b, ok := bySku[fact.SkuID]
		if !ok {
			b = &reporting.SkuBreakdown{UPC: upcs[fact.SkuID]}
			bySku[fact.SkuID] = b
		}
		b.Units += int64(fact.Units)
		b.Revenue = b.Revenue.Add(fact.Revenue)
	}
	var out []reporting.SkuBreakdown
	for _, b := range bySku {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UPC < out[j].UPC })
	return out, nil
}

func (r *reportingFake) DataHealth(ctx context.Context) ([]reporting.HealthRow, error) {
	pseudoID, havePseudo := r.repo.Skus["ALL"]
	weeks, _ := r.ListWeeks(ctx)
	var out []reporting.HealthRow
	for _, w := range weeks {
		row := reporting.HealthRow{ISO: w.ISO, EndDate: w.EndDate}
		wk := r.repo.Weeks[w.ISO]
		total := map[uuid.UUID]bool{}
		pseudo := map[uuid.UUID]bool{}
		for _, fact := range r.repo.Facts[wk.ID] {
			total[fact.StoreID] = true
			if havePseudo && fact.SkuID == pseudoID {
				pseudo[fact.StoreID] = true
			}
		}
		row.TotalStores = int64(len(total))
		row.PseudoStores = int64(len(pseudo))
		if row.TotalStores > 0 {
			row.PctFullAllocated = float64(row.TotalStores-row.PseudoStores) / float64(row.TotalStores) * 100
		}
		out = append(out, row)
	}
	return out, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *ingesttest.FakeRepo) {
	t.Helper()

	repo := ingesttest.NewFakeRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ingestSvc := ingestservice.NewService(repo, logger)
	reportSvc := reporting.NewService(&reportingFake{repo: repo}, logger)

	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Observability.MetricsEnabled = true

	srv := server.New(cfg,
		ingesthandler.NewIngestHandler(ingestSvc, logger),
		reporting.NewHandler(reportSvc, logger),
		logger,
	)

	// Serve the wired handler chain rather than binding the real port.
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, repo
}

func uploadWeek(t *testing.T, ts *httptest.Server) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("weekEndDate", "2025-08-17"))

	fw, err := mw.CreateFormFile("file", "Store_Sales-2025-08-17.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(ingesttest.StoreSalesBytes(t,
		ingesttest.StoreRow{Code: "101", Name: "Downtown", Units: 300, Revenue: 3000},
		ingesttest.StoreRow{Code: "102", Name: "Riverside", Units: 100, Revenue: 1000},
	))
	require.NoError(t, err)

	fw, err = mw.CreateFormFile("file", "Sales_Inv_Perf__Weekly-2025-08-17.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(ingesttest.AllocatorBytes(t,
		ingesttest.SkuRow{UPC: "123456789012", Name: "Lip Gloss", Units: 40, Revenue: 400},
	))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/ingest", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp.StatusCode
}

func TestIngestReportCleanupFlow(t *testing.T) {
	ts, repo := newTestServer(t)

	uploadWeek(t, ts)
	require.Contains(t, repo.Weeks, "2025-W33")

	var weeks struct {
		OK    bool `json:"ok"`
		Weeks []struct {
			Week     string `json:"week"`
			FactRows int64  `json:"factRows"`
		} `json:"weeks"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/weeks", &weeks))
	require.Len(t, weeks.Weeks, 1)
	assert.Equal(t, "2025-W33", weeks.Weeks[0].Week)
	assert.Equal(t, int64(2), weeks.Weeks[0].FactRows)

	var summary struct {
		OK      bool `json:"ok"`
		Summary struct {
			Week struct {
				Week string `json:"week"`
			} `json:"week"`
			Stores []struct {
				StoreCode string `json:"storeCode"`
				Units     int64  `json:"units"`
			} `json:"stores"`
			Skus []struct {
				UPC string `json:"upc"`
			} `json:"skus"`
		} `json:"summary"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/summary?week=latest", &summary))
	assert.Equal(t, "2025-W33", summary.Summary.Week.Week)
	require.Len(t, summary.Summary.Stores, 2)
	assert.Equal(t, "101", summary.Summary.Stores[0].StoreCode)
	assert.Equal(t, int64(300), summary.Summary.Stores[0].Units)
	require.Len(t, summary.Summary.Skus, 1)

	var health struct {
		OK    bool `json:"ok"`
		Weeks []struct {
			Week             string  `json:"week"`
			TotalStores      int64   `json:"totalStores"`
			PctFullAllocated float64 `json:"pctFullAllocated"`
		} `json:"weeks"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/data-health", &health))
	require.Len(t, health.Weeks, 1)
	assert.Equal(t, int64(2), health.Weeks[0].TotalStores)
	assert.Equal(t, 100.0, health.Weeks[0].PctFullAllocated)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/weeks/2025-W33", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, repo.Weeks, "2025-W33")

	require.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/summary?week=2025-W33", &summary))
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pulseiq_ingest_facts_inserted_total")
}
