package ingesttest

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/repository"
)

// FakeRepo is an in-memory IngestRepository for exercising the pipeline
// without a database.
type FakeRepo struct {
	Weeks  map[string]*repository.Week
	Stores map[string]uuid.UUID
	Skus   map[string]uuid.UUID
	Facts  map[uuid.UUID]map[repository.FactKey]repository.Fact
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		Weeks:  make(map[string]*repository.Week),
		Stores: make(map[string]uuid.UUID),
		Skus:   make(map[string]uuid.UUID),
		Facts:  make(map[uuid.UUID]map[repository.FactKey]repository.Fact),
	}
}

func (f *FakeRepo) EnsureWeek(_ context.Context, iso string, year int, start, end time.Time) (uuid.UUID, error) {
	if wk, ok := f.Weeks[iso]; ok {
		return wk.ID, nil
	}
	wk := &repository.Week{ID: uuid.New(), ISO: iso, Year: year, StartDate: start, EndDate: end}
	f.Weeks[iso] = wk
	f.Facts[wk.ID] = make(map[repository.FactKey]repository.Fact)
	return wk.ID, nil
}

func (f *FakeRepo) EnsureStore(_ context.Context, code, _ string) (uuid.UUID, error) {
	if id, ok := f.Stores[code]; ok {
		return id, nil
	}
	id := uuid.New()
	f.Stores[code] = id
	return id, nil
}

func (f *FakeRepo) EnsureSku(_ context.Context, upc, _ string) (uuid.UUID, error) {
	if id, ok := f.Skus[upc]; ok {
		return id, nil
	}
	id := uuid.New()
	f.Skus[upc] = id
	return id, nil
}

func (f *FakeRepo) ExistingFactPairs(_ context.Context, weekID uuid.UUID) (map[repository.FactKey]bool, error) {
	pairs := make(map[repository.FactKey]bool)
	for key := range f.Facts[weekID] {
		pairs[key] = true
	}
	return pairs, nil
}

func (f *FakeRepo) InsertFact(_ context.Context, fact repository.Fact) (bool, error) {
	key := repository.FactKey{StoreID: fact.StoreID, SkuID: fact.SkuID}
	if _, ok := f.Facts[fact.WeekID][key]; ok {
		return false, nil
	}
	f.Facts[fact.WeekID][key] = fact
	return true, nil
}

func (f *FakeRepo) WeekByISO(_ context.Context, iso string) (*repository.Week, error) {
	wk, ok := f.Weeks[iso]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return wk, nil
}

func (f *FakeRepo) LatestWeek(context.Context) (*repository.Week, error) {
	var latest *repository.Week
	for _, wk := range f.Weeks {
		if latest == nil || wk.EndDate.After(latest.EndDate) {
			latest = wk
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	return latest, nil
}

func (f *FakeRepo) DeleteWeekFacts(_ context.Context, weekID uuid.UUID, storeCodes []string) (int64, error) {
	allowed := make(map[uuid.UUID]bool)
	for _, code := range storeCodes {
		if id, ok := f.Stores[code]; ok {
			allowed[id] = true
		}
	}
	var n int64
	for key := range f.Facts[weekID] {
		if len(storeCodes) > 0 && !allowed[key.StoreID] {
			continue
		}
		delete(f.Facts[weekID], key)
		n++
	}
	return n, nil
}

func (f *FakeRepo) DeleteWeekIfEmpty(_ context.Context, weekID uuid.UUID) (bool, error) {
	if len(f.Facts[weekID]) > 0 {
		return false, nil
	}
	for iso, wk := range f.Weeks {
		if wk.ID == weekID {
			delete(f.Weeks, iso)
			delete(f.Facts, weekID)
			return true, nil
		}
	}
	return false, nil
}
