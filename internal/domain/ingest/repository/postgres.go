package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository uses. Tests substitute a
// pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresIngestRepository implements IngestRepository using PostgreSQL
type PostgresIngestRepository struct {
	db DB
}

// NewPostgresIngestRepository creates a new PostgreSQL ingest repository
func NewPostgresIngestRepository(db DB) *PostgresIngestRepository {
	return &PostgresIngestRepository{db: db}
}

func (r *PostgresIngestRepository) EnsureWeek(ctx context.Context, iso string, year int, start, end time.Time) (uuid.UUID, error) {
	query := `
		INSERT INTO weeks (id, iso, year, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (iso) DO UPDATE SET iso = EXCLUDED.iso
		RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, uuid.New(), iso, year, start, end).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure week %s: %w", iso, err)
	}
	return id, nil
}

func (r *PostgresIngestRepository) EnsureStore(ctx context.Context, code, name string) (uuid.UUID, error) {
	query := `
		INSERT INTO stores (id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, uuid.New(), code, name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure store %s: %w", code, err)
	}
	return id, nil
}

func (r *PostgresIngestRepository) EnsureSku(ctx context.Context, upc, name string) (uuid.UUID, error) {
	query := `
		INSERT INTO skus (id, upc, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (upc) DO UPDATE SET upc = EXCLUDED.upc
		RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, uuid.New(), upc, name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure sku %s: %w", upc, err)
	}
	return id, nil
}

func (r *PostgresIngestRepository) ExistingFactPairs(ctx context.Context, weekID uuid.UUID) (map[FactKey]bool, error) {
	query := `
		SELECT store_id, sku_id
		FROM sales_facts
		WHERE week_id = $1`

	rows, err := r.db.Query(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fact pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[FactKey]bool)
	for rows.Next() {
		var key FactKey
		if err := rows.Scan(&key.StoreID, &key.SkuID); err != nil {
			return nil, fmt.Errorf("failed to scan fact pair: %w", err)
		}
		pairs[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fact pairs: %w", err)
	}
	return pairs, nil
}

func (r *PostgresIngestRepository) InsertFact(ctx context.Context, fact Fact) (bool, error) {
	query := `
		INSERT INTO sales_facts (id, week_id, store_id, sku_id, units, revenue)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (week_id, store_id, sku_id) DO NOTHING`

	if fact.ID == uuid.Nil {
		fact.ID = uuid.New()
	}

	tag, err := r.db.Exec(ctx, query,
		fact.ID,
		fact.WeekID,
		fact.StoreID,
		fact.SkuID,
		fact.Units,
		fact.Revenue,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert fact: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresIngestRepository) WeekByISO(ctx context.Context, iso string) (*Week, error) {
	query := `
		SELECT id, iso, year, start_date, end_date
		FROM weeks
		WHERE iso = $1`

	return r.scanWeek(r.db.QueryRow(ctx, query, iso))
}

func (r *PostgresIngestRepository) LatestWeek(ctx context.Context) (*Week, error) {
	query := `
		SELECT id, iso, year, start_date, end_date
		FROM weeks
		ORDER BY end_date DESC
		LIMIT 1`

	return r.scanWeek(r.db.QueryRow(ctx, query))
}

func (r *PostgresIngestRepository) scanWeek(row pgx.Row) (*Week, error) {
	week := &Week{}
	err := row.Scan(&week.ID, &week.ISO, &week.Year, &week.StartDate, &week.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get week: %w", err)
	}
	return week, nil
}

func (r *PostgresIngestRepository) DeleteWeekFacts(ctx context.Context, weekID uuid.UUID, storeCodes []string) (int64, error) {
	query := `
		DELETE FROM sales_facts
		WHERE week_id = $1`
	args := []any{weekID}

	if len(storeCodes) > 0 {
		query += ` AND store_id IN (SELECT id FROM stores WHERE code = ANY($2))`
		args = append(args, storeCodes)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete week facts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresIngestRepository) DeleteWeekIfEmpty(ctx context.Context, weekID uuid.UUID) (bool, error) {
	query := `
		DELETE FROM weeks
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM sales_facts WHERE week_id = $1)`

	tag, err := r.db.Exec(ctx, query, weekID)
	if err != nil {
		return false, fmt.Errorf("failed to delete empty week: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
