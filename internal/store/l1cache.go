package store

import (
	"container/list"
	"sync"
)

// l1Cache is the in-process chunk cache sitting in front of the Redis L2
// tier. A capacity of 0 means unbounded (eviction is opt-in, per the
// concurrency model's "permitted but must not affect correctness" clause);
// a positive capacity evicts least-recently-used chunks. Both binaries pass
// store.l1_cache_chunks, which config sets to 64 when it is left at 0.
type l1Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[int]*list.Element
	order    *list.List
}

type l1Entry struct {
	idx   int
	chunk Chunk
}

func newL1Cache(capacity int) *l1Cache {
	return &l1Cache{
		capacity: capacity,
		items:    make(map[int]*list.Element),
		order:    list.New(),
	}
}

func (c *l1Cache) get(idx int) (Chunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[idx]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*l1Entry).chunk, true
}

func (c *l1Cache) set(idx int, chunk Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[idx]; ok {
		el.Value.(*l1Entry).chunk = chunk
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&l1Entry{idx: idx, chunk: chunk})
	c.items[idx] = el
	if c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*l1Entry).idx)
		}
	}
}

func (c *l1Cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int]*list.Element)
	c.order = list.New()
}
