package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamshelf/pkg/models"
)

type stubStore struct {
	records  map[int64]models.GameMetadata
	queryErr error
	writeErr error

	upserted [][]models.GameMetadata
}

func newStubStore(ids ...int64) *stubStore {
	s := &stubStore{records: make(map[int64]models.GameMetadata)}
	for _, id := range ids {
		s.records[id] = models.GameMetadata{AppID: id, Name: "cached", Genres: []string{}}
	}
	return s
}

func (s *stubStore) GetByAppIDs(ctx context.Context, appIDs []int64) ([]models.GameMetadata, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []models.GameMetadata
	for _, id := range appIDs {
		if m, ok := s.records[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubStore) UpsertAll(ctx context.Context, records []models.GameMetadata) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.upserted = append(s.upserted, records)
	for _, m := range records {
		s.records[m.AppID] = m
	}
	return nil
}

type stubEnricher struct {
	batches  [][]int64
	err      error
	unmapped map[int64]bool // ids IGDB has no record for
}

func (e *stubEnricher) FetchBatch(ctx context.Context, appIDs []int64) ([]models.GameMetadata, error) {
	e.batches = append(e.batches, append([]int64(nil), appIDs...))
	if e.err != nil {
		return nil, e.err
	}
	out := make([]models.GameMetadata, 0, len(appIDs))
	for _, id := range appIDs {
		if e.unmapped[id] {
			continue
		}
		out = append(out, models.GameMetadata{AppID: id, Name: "fresh", Genres: []string{"Action"}})
	}
	return out, nil
}

func TestEnsureMetadata_AllCached(t *testing.T) {
	store := newStubStore(1, 2, 3)
	enricher := &stubEnricher{}
	f := NewFetcher(store, enricher)

	res := f.EnsureMetadata(context.Background(), []int64{1, 2, 3})
	assert.Len(t, res.Records, 3)
	assert.Empty(t, enricher.batches, "full cache hit must make zero remote calls")
	assert.NoError(t, res.PersistErr)
}

func TestEnsureMetadata_PartialHit(t *testing.T) {
	store := newStubStore(2)
	enricher := &stubEnricher{}
	f := NewFetcher(store, enricher)

	res := f.EnsureMetadata(context.Background(), []int64{1, 2, 3})
	assert.Len(t, res.Records, 3)

	require.Len(t, enricher.batches, 1)
	assert.Equal(t, []int64{1, 3}, enricher.batches[0], "only misses go remote")

	require.Len(t, store.upserted, 1)
	assert.Len(t, store.upserted[0], 2, "fresh records are written back")
}

func TestEnsureMetadata_Dedupes(t *testing.T) {
	store := newStubStore()
	enricher := &stubEnricher{}
	f := NewFetcher(store, enricher)

	f.EnsureMetadata(context.Background(), []int64{7, 7, 7, 8})
	require.Len(t, enricher.batches, 1)
	assert.Equal(t, []int64{7, 8}, enricher.batches[0])
}

func TestEnsureMetadata_BatchSplit(t *testing.T) {
	store := newStubStore()
	enricher := &stubEnricher{}
	f := NewFetcher(store, enricher)
	f.BatchSize = 500

	ids := make([]int64, 1201)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	res := f.EnsureMetadata(context.Background(), ids)
	assert.Len(t, res.Records, 1201)

	// ceil(1201/500) batches
	require.Len(t, enricher.batches, 3)
	assert.Len(t, enricher.batches[0], 500)
	assert.Len(t, enricher.batches[1], 500)
	assert.Len(t, enricher.batches[2], 201)
}

func TestEnsureMetadata_QueryFailureTreatedAsMiss(t *testing.T) {
	store := newStubStore(1, 2)
	store.queryErr = errors.New("disk exploded")
	enricher := &stubEnricher{}
	f := NewFetcher(store, enricher)

	res := f.EnsureMetadata(context.Background(), []int64{1, 2})
	assert.Len(t, res.Records, 2)
	require.Len(t, enricher.batches, 1)
	assert.Equal(t, []int64{1, 2}, enricher.batches[0], "query failure means fetch everything")
}

func TestEnsureMetadata_FailedBatchOmitted(t *testing.T) {
	store := newStubStore()
	enricher := &stubEnricher{err: errors.New("igdb: status 500")}
	f := NewFetcher(store, enricher)

	res := f.EnsureMetadata(context.Background(), []int64{1, 2, 3})
	assert.Empty(t, res.Records, "failed batch ids are omitted, not an error")
	assert.NoError(t, res.PersistErr)
	assert.Empty(t, store.upserted)
}

func TestEnsureMetadata_WriteFailureObservableNotFatal(t *testing.T) {
	store := newStubStore()
	store.writeErr = errors.New("readonly database")
	enricher := &stubEnricher{}
	f := NewFetcher(store, enricher)

	res := f.EnsureMetadata(context.Background(), []int64{5})
	assert.Len(t, res.Records, 1, "fetched data is returned even when persistence fails")
	assert.Error(t, res.PersistErr)
}

func TestEnsureMetadata_UnmappedIDsAbsent(t *testing.T) {
	store := newStubStore()
	enricher := &stubEnricher{unmapped: map[int64]bool{2: true}}
	f := NewFetcher(store, enricher)

	res := f.EnsureMetadata(context.Background(), []int64{1, 2})
	require.Len(t, res.Records, 1)
	assert.EqualValues(t, 1, res.Records[0].AppID)
}

func TestEnsureMetadata_NilEnricherIsCacheOnly(t *testing.T) {
	store := newStubStore(9)
	f := NewFetcher(store, nil)

	res := f.EnsureMetadata(context.Background(), []int64{9, 10})
	assert.Len(t, res.Records, 1)
}

func TestEnsureMetadata_EmptyInput(t *testing.T) {
	f := NewFetcher(newStubStore(), &stubEnricher{})
	res := f.EnsureMetadata(context.Background(), nil)
	assert.Empty(t, res.Records)
}
