package store

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nmrhose/nmrhose/internal/infrastructure/database/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is a minimal redis.Cache double backed by an in-memory map in
// place of a Redis connection. Get, Set and GetOrSet do real work; GetOrSet
// holds loadMu across its check-load-store sequence, so concurrent callers
// share one load as they do behind the real cache's singleflight group.
// Every other method is unused by Store and panics if ever called, so a
// future caller touching one will fail loudly.
type fakeCache struct {
	mu     sync.Mutex
	loadMu sync.Mutex
	items  map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	data, ok := f.items[key]
	f.mu.Unlock()
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.items[key] = data
	f.mu.Unlock()
	return nil
}

func (f *fakeCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(context.Context) (interface{}, error)) error {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()
	if err := f.Get(ctx, key, dest); err == nil {
		return nil
	}
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	if err := f.Set(ctx, key, v, ttl); err != nil {
		return err
	}
	return f.Get(ctx, key, dest)
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error                  { panic("unused") }
func (f *fakeCache) Exists(ctx context.Context, key string) (bool, error)              { panic("unused") }
func (f *fakeCache) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	panic("unused")
}
func (f *fakeCache) MSet(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	panic("unused")
}
func (f *fakeCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) { panic("unused") }
func (f *fakeCache) HGet(ctx context.Context, key, field string) (string, error)      { panic("unused") }
func (f *fakeCache) HSet(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	panic("unused")
}
func (f *fakeCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	panic("unused")
}
func (f *fakeCache) HDel(ctx context.Context, key string, fields ...string) error { panic("unused") }
func (f *fakeCache) Incr(ctx context.Context, key string) (int64, error)          { panic("unused") }
func (f *fakeCache) IncrBy(ctx context.Context, key string, value int64) (int64, error) {
	panic("unused")
}
func (f *fakeCache) Decr(ctx context.Context, key string) (int64, error) { panic("unused") }
func (f *fakeCache) ZAdd(ctx context.Context, key string, members ...*redis.ZMember) error {
	panic("unused")
}
func (f *fakeCache) ZRangeByScore(ctx context.Context, key string, min, max float64, offset, count int64) ([]string, error) {
	panic("unused")
}
func (f *fakeCache) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]*redis.ZMember, error) {
	panic("unused")
}
func (f *fakeCache) ZRem(ctx context.Context, key string, members ...string) error { panic("unused") }
func (f *fakeCache) ZScore(ctx context.Context, key, member string) (float64, error) {
	panic("unused")
}
func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error { panic("unused") }
func (f *fakeCache) TTL(ctx context.Context, key string) (time.Duration, error)      { panic("unused") }
func (f *fakeCache) Ping(ctx context.Context) error                                  { panic("unused") }

// countingLoader wraps a fixed dataset and counts how many times each
// chunk index is actually loaded, to verify coalescing.
type countingLoader struct {
	dataset map[string]Entry
	calls   map[int]*int64
	mu      sync.Mutex
}

func newCountingLoader(dataset map[string]Entry) *countingLoader {
	return &countingLoader{dataset: dataset, calls: make(map[int]*int64)}
}

func (l *countingLoader) LoadChunk(ctx context.Context, idx int) (Chunk, error) {
	l.mu.Lock()
	counter, ok := l.calls[idx]
	if !ok {
		var c int64
		counter = &c
		l.calls[idx] = counter
	}
	l.mu.Unlock()
	atomic.AddInt64(counter, 1)

	c := Partition(l.dataset)[idx]
	if c == nil {
		c = make(Chunk)
	}
	return c, nil
}

func (l *countingLoader) callCount(idx int) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	counter, ok := l.calls[idx]
	if !ok {
		return 0
	}
	return atomic.LoadInt64(counter)
}

func sampleDataset() map[string]Entry {
	return map[string]Entry{
		"HHHC(HHC/HHH/)": {
			Nucleus: "C", SMILES: "CC",
			Solvents: map[string]SolventStats{"CDCl3": {Avg: 14.0, Count: 5}},
		},
		"HHCC(HHH,HHH//)": {
			Nucleus: "C", SMILES: "CCC",
			Solvents: map[string]SolventStats{"CDCl3": {Avg: 23.0, Count: 2}},
		},
	}
}

func TestStore_QueryExact_HitAndMiss(t *testing.T) {
	dataset := sampleDataset()
	loader := newCountingLoader(dataset)
	s := New(loader, newFakeCache(), "file", 0)

	entry, ok, err := s.QueryExact(context.Background(), "HHHC(HHC/HHH/)")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CC", entry.SMILES)

	_, ok, err = s.QueryExact(context.Background(), "no-such-key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ChunkLoad_Coalesces(t *testing.T) {
	dataset := sampleDataset()
	loader := newCountingLoader(dataset)
	s := New(loader, newFakeCache(), "file", 0)

	key := "HHHC(HHC/HHH/)"
	idx := ChunkIndex(key)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.QueryExact(context.Background(), key)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), loader.callCount(idx))
}

func TestStore_L1Cache_AvoidsRepeatedL2Access(t *testing.T) {
	dataset := sampleDataset()
	loader := newCountingLoader(dataset)
	s := New(loader, newFakeCache(), "file", 0)

	key := "HHHC(HHC/HHH/)"
	idx := ChunkIndex(key)

	for i := 0; i < 5; i++ {
		_, _, err := s.QueryExact(context.Background(), key)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), loader.callCount(idx))
}

func TestStore_Preload_LoadsDistinctChunksOnce(t *testing.T) {
	dataset := sampleDataset()
	loader := newCountingLoader(dataset)
	s := New(loader, newFakeCache(), "file", 0)

	keys := make([]string, 0, len(dataset))
	for k := range dataset {
		keys = append(keys, k)
	}
	require.NoError(t, s.Preload(context.Background(), keys))

	for _, k := range keys {
		assert.Equal(t, int64(1), loader.callCount(ChunkIndex(k)))
	}
}

func TestStore_All_VisitsEveryEntry(t *testing.T) {
	dataset := sampleDataset()
	loader := newCountingLoader(dataset)
	s := New(loader, newFakeCache(), "file", 0)

	seen := make(map[string]Entry)
	err := s.All(context.Background(), func(ce ChunkEntry) error {
		seen[ce.Key] = ce.Entry
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, len(dataset))
	for k, v := range dataset {
		assert.Equal(t, v.SMILES, seen[k].SMILES)
	}
}

func TestStore_All_StopsOnCallbackError(t *testing.T) {
	dataset := sampleDataset()
	loader := newCountingLoader(dataset)
	s := New(loader, newFakeCache(), "file", 0)

	stopErr := assert.AnError
	err := s.All(context.Background(), func(ce ChunkEntry) error {
		return stopErr
	})
	assert.ErrorIs(t, err, stopErr)
}
