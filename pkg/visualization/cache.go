package visualization

import (
	"container/list"
	"slices"
	"strings"
	"sync"
)

// DefaultCacheCapacity is used when NewLayoutCache is given a non-positive capacity
const DefaultCacheCapacity = 8

// CacheKey identifies one layout: the hash of the sorted identifier set and the seed
type CacheKey struct {
	IDsHash uint32
	Seed    int64
}

// NewCacheKey builds the key for ids and seed. Order of ids does not matter.
func NewCacheKey(ids []string, seed int64) CacheKey {
	return CacheKey{
		IDsHash: HashString(strings.Join(SortedIDs(ids), "|")),
		Seed:    seed,
	}
}

// LayoutCache is an LRU cache of computed layouts.
//
// Entries are keyed by (sorted identifier set, seed) only, so changes to any
// other habit state never invalidate a layout. Positions are stored per
// identifier and re-aligned to the caller's order on every hit.
type LayoutCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[CacheKey]*list.Element
	lru      *list.List

	hits   int64
	misses int64
}

type layoutEntry struct {
	key       CacheKey
	sorted    []string
	positions map[string]Position
	stats     PlacementStats
	// center stands in for ids that have no stored position.
	center Position
}

// NewLayoutCache creates a new LRU layout cache
func NewLayoutCache(capacity int) *LayoutCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &LayoutCache{
		capacity: capacity,
		cache:    make(map[CacheKey]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached layout for ids and seed, aligned to ids
func (lc *LayoutCache) Get(ids []string, seed int64) ([]Position, bool) {
	entry, ok := lc.lookup(ids, seed)
	if !ok {
		return nil, false
	}
	return entry.align(ids), true
}

func (lc *LayoutCache) lookup(ids []string, seed int64) (*layoutEntry, bool) {
	key := NewCacheKey(ids, seed)
	sorted := SortedIDs(ids)

	lc.mu.Lock()
	defer lc.mu.Unlock()

	elem, ok := lc.cache[key]
	if !ok || !slices.Equal(elem.Value.(*layoutEntry).sorted, sorted) {
		lc.misses++
		return nil, false
	}

	lc.lru.MoveToFront(elem)
	lc.hits++
	return elem.Value.(*layoutEntry), true
}

// Put stores positions computed for ids (aligned to ids) under seed.
// Ids beyond len(positions) resolve to center.
func (lc *LayoutCache) Put(ids []string, seed int64, positions []Position, stats PlacementStats, center Position) {
	key := NewCacheKey(ids, seed)
	byID := make(map[string]Position, len(ids))
	for i, id := range ids {
		if i < len(positions) {
			byID[id] = positions[i]
		}
	}
	entry := &layoutEntry{
		key:       key,
		sorted:    SortedIDs(ids),
		positions: byID,
		stats:     stats,
		center:    center,
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if elem, ok := lc.cache[key]; ok {
		lc.lru.MoveToFront(elem)
		elem.Value = entry
		return
	}

	lc.cache[key] = lc.lru.PushFront(entry)
	if lc.lru.Len() > lc.capacity {
		lc.evict()
	}
}

// GetOrCompute returns the cached layout or computes and stores it.
// Stats are those recorded when the layout was computed. The returned bool
// reports whether the layout came from the cache.
func (lc *LayoutCache) GetOrCompute(ids []string, seed int64, layout *ConstellationLayout) ([]Position, PlacementStats, bool) {
	if entry, ok := lc.lookup(ids, seed); ok {
		return entry.align(ids), entry.stats, true
	}
	positions, stats := layout.ComputeLayoutWithStats(ids, seed)
	lc.Put(ids, seed, positions, stats, layout.Center())
	return positions, stats, false
}

// evict removes the least recently used entry
func (lc *LayoutCache) evict() {
	elem := lc.lru.Back()
	if elem != nil {
		lc.lru.Remove(elem)
		delete(lc.cache, elem.Value.(*layoutEntry).key)
	}
}

// Invalidate drops every cached layout
func (lc *LayoutCache) Invalidate() {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.cache = make(map[CacheKey]*list.Element)
	lc.lru = list.New()
}

// Stats returns cache statistics
func (lc *LayoutCache) Stats() (hits, misses int64, hitRate float64) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	hits = lc.hits
	misses = lc.misses
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return
}

// Size returns the current number of entries
func (lc *LayoutCache) Size() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.lru.Len()
}

func (e *layoutEntry) align(ids []string) []Position {
	out := make([]Position, len(ids))
	for i, id := range ids {
		pos, ok := e.positions[id]
		if !ok {
			pos = e.center
		}
		out[i] = pos
	}
	return out
}
