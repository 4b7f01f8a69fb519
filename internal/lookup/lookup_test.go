package lookup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nmrhose/nmrhose/internal/chem/hose"
	"github.com/nmrhose/nmrhose/internal/chem/molgraph"
	"github.com/nmrhose/nmrhose/internal/infrastructure/database/redis"
	"github.com/nmrhose/nmrhose/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedLoader serves a fixed flat dataset partitioned on demand, so tests
// don't need a real backend.
type fixedLoader struct {
	dataset map[string]store.Entry
}

func (f fixedLoader) LoadChunk(ctx context.Context, idx int) (store.Chunk, error) {
	c := store.Partition(f.dataset)[idx]
	if c == nil {
		c = make(store.Chunk)
	}
	return c, nil
}

// memCache is a minimal redis.Cache stand-in: only Get/Set/GetOrSet do real
// work (all these tests need), backed by a plain map instead of Redis.
type memCache struct {
	items map[string][]byte
}

func newTestCache() *memCache { return &memCache{items: make(map[string][]byte)} }

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.items[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *memCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(context.Context) (interface{}, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error     { panic("unused") }
func (c *memCache) Exists(ctx context.Context, key string) (bool, error) { panic("unused") }
func (c *memCache) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	panic("unused")
}
func (c *memCache) MSet(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	panic("unused")
}
func (c *memCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) { panic("unused") }
func (c *memCache) HGet(ctx context.Context, key, field string) (string, error)      { panic("unused") }
func (c *memCache) HSet(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	panic("unused")
}
func (c *memCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	panic("unused")
}
func (c *memCache) HDel(ctx context.Context, key string, fields ...string) error { panic("unused") }
func (c *memCache) Incr(ctx context.Context, key string) (int64, error)          { panic("unused") }
func (c *memCache) IncrBy(ctx context.Context, key string, value int64) (int64, error) {
	panic("unused")
}
func (c *memCache) Decr(ctx context.Context, key string) (int64, error) { panic("unused") }
func (c *memCache) ZAdd(ctx context.Context, key string, members ...*redis.ZMember) error {
	panic("unused")
}
func (c *memCache) ZRangeByScore(ctx context.Context, key string, min, max float64, offset, count int64) ([]string, error) {
	panic("unused")
}
func (c *memCache) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]*redis.ZMember, error) {
	panic("unused")
}
func (c *memCache) ZRem(ctx context.Context, key string, members ...string) error { panic("unused") }
func (c *memCache) ZScore(ctx context.Context, key, member string) (float64, error) {
	panic("unused")
}
func (c *memCache) Expire(ctx context.Context, key string, ttl time.Duration) error { panic("unused") }
func (c *memCache) TTL(ctx context.Context, key string) (time.Duration, error)      { panic("unused") }
func (c *memCache) Ping(ctx context.Context) error                                  { panic("unused") }

func hoseOf(t *testing.T, smiles string, atomIdx int) string {
	t.Helper()
	mol, err := molgraph.ParseSMILES(smiles)
	require.NoError(t, err)
	require.NoError(t, mol.EnsureDerivedTables())
	key, err := hose.Generate(mol, atomIdx, hose.DefaultMaxSpheres)
	require.NoError(t, err)
	return key
}

func TestElementFromNucleus(t *testing.T) {
	assert.Equal(t, "C", ElementFromNucleus("13C"))
	assert.Equal(t, "H", ElementFromNucleus("1H"))
	assert.Equal(t, "Si", ElementFromNucleus("29Si"))
	assert.Equal(t, "C", ElementFromNucleus(""))
}

func TestLookup_ExactMatch(t *testing.T) {
	key := hoseOf(t, "CC", 0)
	dataset := map[string]store.Entry{
		key: {
			Nucleus: "C", SMILES: "CC",
			Solvents: map[string]store.SolventStats{"CDCl3": {Avg: 6.5, Count: 10}},
		},
	}
	s := store.New(fixedLoader{dataset: dataset}, newTestCache(), "test", 0)

	results, err := Lookup(context.Background(), s, "CC", "13C")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "C", r.Element)
		assert.Equal(t, 0, r.FallbackRound)
		assert.InDelta(t, 6.5, r.Shift, 1e-9)
	}
}

func TestLookup_TruncationFallback(t *testing.T) {
	fullKey := hoseOf(t, "CCC", 0)
	pos := rightmostDelimiter(fullKey)
	require.Greater(t, pos, 0)
	truncated := fullKey[:pos]

	dataset := map[string]store.Entry{
		truncated: {
			Nucleus: "C", SMILES: "CCC-ish",
			Solvents: map[string]store.SolventStats{"CDCl3": {Avg: 30, Count: 1}},
		},
	}
	s := store.New(fixedLoader{dataset: dataset}, newTestCache(), "test", 0)

	entry, matchedKey, round, ok, err := New(s).resolve(context.Background(), fullKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, round, 0)
	assert.Equal(t, truncated, matchedKey)
	assert.Equal(t, "CCC-ish", entry.SMILES)
}

func TestLookup_NoHitSkipsAtomSilently(t *testing.T) {
	s := store.New(fixedLoader{dataset: map[string]store.Entry{}}, newTestCache(), "test", 0)
	results, err := Lookup(context.Background(), s, "CC", "13C")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLookup_NoAtomsOfRequestedElement(t *testing.T) {
	s := store.New(fixedLoader{dataset: map[string]store.Entry{}}, newTestCache(), "test", 0)
	results, err := Lookup(context.Background(), s, "CC", "29Si")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLookup_InvalidSMILESPropagates(t *testing.T) {
	s := store.New(fixedLoader{dataset: map[string]store.Entry{}}, newTestCache(), "test", 0)
	_, err := Lookup(context.Background(), s, "((", "13C")
	assert.Error(t, err)
}
