// Package store implements the sharded, lazily loaded shift database (256
// fixed chunks, content-addressed by ChunkIndex) that sits behind both the
// forward lookup and the reverse estimator.
package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nmrhose/nmrhose/internal/events"
	"github.com/nmrhose/nmrhose/internal/infrastructure/database/redis"
	"github.com/nmrhose/nmrhose/internal/infrastructure/messaging/kafka"
	"github.com/nmrhose/nmrhose/internal/infrastructure/monitoring/prometheus"
)

// ChunkEntry is one (chunk, key, entry) triple surfaced by All, the
// estimator's full-database scan.
type ChunkEntry struct {
	ChunkIndex int
	Key        string
	Entry      Entry
}

// Store composes a ChunkLoader with a two-tier cache: an in-process L1
// (l1Cache) in front of the Redis-backed L2 (redis.Cache), whose GetOrSet
// already coalesces concurrent loads for the same key via singleflight.
// Concurrent first access for a cold chunk index therefore triggers
// exactly one ChunkLoader.LoadChunk call, with every other caller
// observing the same resulting map.
type Store struct {
	loader    ChunkLoader
	l2        redis.Cache
	l1        *l1Cache
	publisher events.Publisher
	metrics   *prometheus.AppMetrics
	backend   string
	chunkTTL  time.Duration
}

// Option configures a Store at construction.
type Option func(*Store)

func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithChunkTTL(ttl time.Duration) Option {
	return func(s *Store) { s.chunkTTL = ttl }
}

// New builds a Store. backend names the loader for metrics labeling
// ("minio" or "file"); l1CacheChunks of 0 leaves the in-process tier
// unbounded.
func New(loader ChunkLoader, l2 redis.Cache, backend string, l1CacheChunks int, opts ...Option) *Store {
	s := &Store{
		loader:    loader,
		l2:        l2,
		l1:        newL1Cache(l1CacheChunks),
		publisher: events.NopPublisher{},
		backend:   backend,
		chunkTTL:  24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKeyForChunk(idx int) string {
	return fmt.Sprintf("store:chunk:%03d", idx)
}

// chunk resolves chunk idx through L1, then L2 (which itself coalesces
// concurrent loader calls), falling back to loader.LoadChunk on a full
// miss.
func (s *Store) chunk(ctx context.Context, idx int) (Chunk, error) {
	if c, ok := s.l1.get(idx); ok {
		s.recordCacheAccess("l1", true)
		return c, nil
	}
	s.recordCacheAccess("l1", false)

	start := time.Now()
	var c Chunk
	err := s.l2.GetOrSet(ctx, cacheKeyForChunk(idx), &c, s.chunkTTL, func(ctx context.Context) (interface{}, error) {
		s.recordCacheAccess("l2", false)
		return s.loader.LoadChunk(ctx, idx)
	})
	if s.metrics != nil {
		prometheus.RecordStoreChunkLoad(s.metrics, s.backend, time.Since(start))
	}
	if err != nil {
		s.publisher.ChunkLoadFailed(ctx, kafka.ChunkLoadFailedPayload{
			ChunkIndex: idx,
			Backend:    s.backend,
			Reason:     err.Error(),
			FailedAt:   time.Now(),
		})
		return nil, err
	}
	s.l1.set(idx, c)
	return c, nil
}

func (s *Store) recordCacheAccess(tier string, hit bool) {
	if s.metrics != nil {
		prometheus.RecordStoreCacheAccess(s.metrics, tier, hit)
	}
}

// QueryExact resolves key to its entry, probing only the chunk key's own
// ChunkIndex selects. Absence is not an error: ok is false.
func (s *Store) QueryExact(ctx context.Context, key string) (Entry, bool, error) {
	c, err := s.chunk(ctx, ChunkIndex(key))
	if err != nil {
		return Entry{}, false, err
	}
	entry, ok := c[key]
	return entry, ok, nil
}

// Preload resolves the distinct chunk indices spanned by keys and loads
// each at most once, in parallel, returning once every load has settled
// (first error wins, but every load is still allowed to complete so the
// cache stays consistent for subsequent callers).
func (s *Store) Preload(ctx context.Context, keys []string) error {
	seen := make(map[int]bool)
	var indices []int
	for _, k := range keys {
		idx := ChunkIndex(k)
		if !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}

	type result struct {
		idx int
		err error
	}
	results := make(chan result, len(indices))
	for _, idx := range indices {
		go func(idx int) {
			_, err := s.chunk(ctx, idx)
			results <- result{idx: idx, err: err}
		}(idx)
	}

	var firstErr error
	for range indices {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("preloading chunk %d: %w", r.idx, r.err)
		}
	}
	return firstErr
}

// All streams every (chunk, key, entry) triple across the full key space,
// loading chunks in index order. fn's error, if any, stops the scan and is
// returned; a context cancellation between chunks also stops the scan.
func (s *Store) All(ctx context.Context, fn func(ChunkEntry) error) error {
	for idx := 0; idx < NumChunks; idx++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c, err := s.chunk(ctx, idx)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := fn(ChunkEntry{ChunkIndex: idx, Key: k, Entry: c[k]}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ClearL1 drops every chunk resident in the in-process tier. Intended for
// tests and for operators forcing a refresh after republishing chunks.
func (s *Store) ClearL1() {
	s.l1.clear()
}
