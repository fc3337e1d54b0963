package metadata

import (
	"context"
	"log"

	"steamshelf/pkg/models"
)

// One remote call covers at most this many appids (IGDB query limit).
const defaultBatchSize = 500

// Store is the persistence collaborator for the cache-aside path.
// *Repo satisfies it; tests stub it.
type Store interface {
	GetByAppIDs(ctx context.Context, appIDs []int64) ([]models.GameMetadata, error)
	UpsertAll(ctx context.Context, records []models.GameMetadata) error
}

// Enricher fetches one batch of records from the remote metadata API.
// *IGDBClient satisfies it.
type Enricher interface {
	FetchBatch(ctx context.Context, appIDs []int64) ([]models.GameMetadata, error)
}

// FetchResult is what EnsureMetadata hands back. PersistErr reports a
// best-effort cache write that failed; the records are complete either
// way, so callers are free to ignore it.
type FetchResult struct {
	Records    []models.GameMetadata
	PersistErr error
}

// Fetcher implements the cache-aside pattern over Store and Enricher:
// read the store, fetch only the misses in bounded batches, write the
// fresh records back, return the union.
type Fetcher struct {
	Store     Store
	Enricher  Enricher // nil means cache-only lookups
	BatchSize int
}

func NewFetcher(store Store, enricher Enricher) *Fetcher {
	return &Fetcher{
		Store:     store,
		Enricher:  enricher,
		BatchSize: defaultBatchSize,
	}
}

// EnsureMetadata returns metadata for every resolvable appid in appIDs,
// at most one record per id. It never fails outright: a store read
// failure degrades to "nothing cached", a failed batch drops only that
// batch's ids, and a store write failure is reported via PersistErr
// while the fetched records are still returned.
func (f *Fetcher) EnsureMetadata(ctx context.Context, appIDs []int64) FetchResult {
	unique := dedupe(appIDs)
	if len(unique) == 0 {
		return FetchResult{Records: []models.GameMetadata{}}
	}

	cached, err := f.Store.GetByAppIDs(ctx, unique)
	if err != nil {
		// Availability over cache fidelity: fetch everything remotely.
		log.Printf("[metadata] cache query failed, treating all as misses: %v", err)
		cached = nil
	}

	have := make(map[int64]bool, len(cached))
	for _, m := range cached {
		have[m.AppID] = true
	}

	missing := make([]int64, 0, len(unique))
	for _, id := range unique {
		if !have[id] {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 || f.Enricher == nil {
		return FetchResult{Records: cached}
	}

	log.Printf("[metadata] fetching %d of %d appids from IGDB", len(missing), len(unique))

	batchSize := f.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	fresh := make([]models.GameMetadata, 0, len(missing))
	for start := 0; start < len(missing); start += batchSize {
		end := start + batchSize
		if end > len(missing) {
			end = len(missing)
		}

		records, err := f.Enricher.FetchBatch(ctx, missing[start:end])
		if err != nil {
			// keep going: one failed batch should not drop the rest
			log.Printf("[metadata] batch %d-%d failed: %v", start, end, err)
			continue
		}
		fresh = append(fresh, records...)
	}

	result := FetchResult{Records: append(cached, fresh...)}

	if len(fresh) > 0 {
		if err := f.Store.UpsertAll(ctx, fresh); err != nil {
			log.Printf("[metadata] cache upsert failed: %v", err)
			result.PersistErr = err
		}
	}

	return result
}

// dedupe keeps first occurrence order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
