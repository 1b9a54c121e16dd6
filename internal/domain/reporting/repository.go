// Package reporting serves the dashboard's read side: week lists, weekly
// KPI summaries, per-store and per-SKU breakdowns and a data health view.
package reporting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/allocation"
)

// weeksLimit caps the week list at two years.
const weeksLimit = 104

// DB is the subset of pgxpool.Pool the reporting queries use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WeekInfo is one entry of the week list.
type WeekInfo struct {
	ID        uuid.UUID       `json:"-"`
	ISO       string          `json:"week"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
	FactRows  int64           `json:"factRows"`
	Stores    int64           `json:"stores"`
	Skus      int64           `json:"skus"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// StoreBreakdown is one store's slice of a week.
type StoreBreakdown struct {
	StoreCode string          `json:"storeCode"`
	StoreName string          `json:"storeName"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SkuBreakdown is one SKU's chain-wide slice of a week.
type SkuBreakdown struct {
	UPC     string          `json:"upc"`
	Name    string          `json:"name"`
	Units   int64           `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// HealthRow flags weeks whose stores lean on the pseudo SKU, meaning the
// upload had store totals but no SKU breakdown for some or all stores.
type HealthRow struct {
	ISO              string    `json:"week"`
	EndDate          time.Time `json:"endDate"`
	TotalStores      int64     `json:"totalStores"`
	PseudoStores     int64     `json:"pseudoStores"`
	PctFullAllocated float64   `json:"pctFullAllocated"`
}

// Repository defines the read queries behind the reporting endpoints.
type Repository interface {
	ListWeeks(ctx context.Context) ([]WeekInfo, error)
	WeekByISO(ctx context.Context, iso string) (*WeekInfo, error)
	WeekByDate(ctx context.Context, date time.Time) (*WeekInfo, error)
	LatestWeek(ctx context.Context) (*WeekInfo, error)
	StoresForWeek(ctx context.Context, weekID uuid.UUID) ([]StoreBreakdown, error)
	SkusForWeek(ctx context.Context, weekID uuid.UUID) ([]SkuBreakdown, error)
	DataHealth(ctx context.Context) ([]HealthRow, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new PostgreSQL reporting repository
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const weekInfoSelect = `
	SELECT w.id, w.iso, w.start_date, w.end_date,
	       COUNT(f.id),
	       COUNT(DISTINCT f.store_id),
	       COUNT(DISTINCT f.sku_id),
	       COALESCE(SUM(f.units), 0),
	       COALESCE(SUM(f.revenue), 0)
	FROM weeks w
	LEFT JOIN sales_facts f ON f.week_id = w.id`

func (r *PostgresRepository) ListWeeks(ctx context.Context) ([]WeekInfo, error) {
	query := weekInfoSelect + `
	GROUP BY w.id
	ORDER BY w.end_date DESC
	LIMIT $1`

	rows, err := r.db.Query(ctx, query, weeksLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	defer rows.Close()

	var out []WeekInfo
	for rows.Next() {
		w, err := scanWeekInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read weeks: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) WeekByISO(ctx context.Context, iso string) (*WeekInfo, error) {
	query := weekInfoSelect + `
	WHERE w.iso = $1
	GROUP BY w.id`

	return r.oneWeek(ctx, query, iso)
}

func (r *PostgresRepository) WeekByDate(ctx context.Context, date time.Time) (*WeekInfo, error) {
	query := weekInfoSelect + `
	WHERE $1::date BETWEEN w.start_date AND w.end_date
	GROUP BY w.id`

	return r.oneWeek(ctx, query, date)
}

func (r *PostgresRepository) LatestWeek(ctx context.Context) (*WeekInfo, error) {
	query := weekInfoSelect + `
	GROUP BY w.id
	ORDER BY w.end_date DESC
	LIMIT 1`

	return r.oneWeek(ctx, query)
}

func (r *PostgresRepository) oneWeek(ctx context.Context, query string, args ...any) (*WeekInfo, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get week: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get week: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	return scanWeekInfo(rows)
}

func scanWeekInfo(rows pgx.Rows) (*WeekInfo, error) {
	w := &WeekInfo{}
	err := rows.Scan(&w.ID, &w.ISO, &w.StartDate, &w.EndDate,
		&w.FactRows, &w.Stores, &w.Skus, &w.Units, &w.Revenue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan week: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) StoresForWeek(ctx context.Context, weekID uuid.UUID) ([]StoreBreakdown, error) {
	query := `
		SELECT s.code, s.name, COALESCE(SUM(f.units), 0), COALESCE(SUM(f.revenue), 0)
		FROM sales_facts f
		JOIN stores s ON s.id = f.store_id
		WHERE f.week_id = $1
		GROUP BY s.id
		ORDER BY SUM(f.revenue) DESC`

	rows, err := r.db.Query(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to list store breakdown: %w", err)
	}
	defer rows.Close()

	var out []StoreBreakdown
	for rows.Next() {
		var b StoreBreakdown
		if err := rows.Scan(&b.StoreCode, &b.StoreName, &b.Units, &b.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan store breakdown: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read store breakdown: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) SkusForWeek(ctx context.Context, weekID uuid.UUID) ([]SkuBreakdown, error) {
	query := `
		SELECT k.upc, k.name, COALESCE(SUM(f.units), 0), COALESCE(SUM(f.revenue), 0)
		FROM sales_facts f
		JOIN skus k ON k.id = f.sku_id
		WHERE f.week_id = $1
		GROUP BY k.id
		ORDER BY SUM(f.revenue) DESC`

	rows, err := r.db.Query(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sku breakdown: %w", err)
	}
	defer rows.Close()

	var out []SkuBreakdown
	for rows.Next() {
		var b SkuBreakdown
		if err := rows.Scan(&b.UPC, &b.Name, &b.Units, &b.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan sku breakdown: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sku breakdown: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) DataHealth(ctx context.Context) ([]HealthRow, error) {
	query := `
		SELECT w.iso, w.end_date,
		       COUNT(DISTINCT f.store_id),
		       COUNT(DISTINCT f.store_id) FILTER (WHERE k.upc = $1)
		FROM weeks w
		LEFT JOIN sales_facts f ON f.week_id = w.id
		LEFT JOIN skus k ON k.id = f.sku_id
		GROUP BY w.id
		ORDER BY w.end_date DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, allocation.PseudoUPC, weeksLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list data health: %w", err)
	}
	defer rows.Close()

	var out []HealthRow
	for rows.Next() {
		var h HealthRow
		if err := rows.Scan(&h.ISO, &h.EndDate, &h.TotalStores, &h.PseudoStores); err != nil {
			return nil, fmt.Errorf("failed to scan data health: %w", err)
		}
		if h.TotalStores > 0 {
			pct := float64(h.TotalStores-h.PseudoStores) / float64(h.TotalStores) * 100
			h.PctFullAllocated = math.Round(pct*10) / 10
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data health: %w", err)
	}
	return out, nil
}
