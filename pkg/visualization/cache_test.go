package visualization

import (
	"sync"
	"testing"
)

func TestLayoutCacheHitMiss(t *testing.T) {
	cache := NewLayoutCache(4)
	layout := NewConstellationLayout(nil)
	ids := []string{"a", "b", "c"}

	first, _, cached := cache.GetOrCompute(ids, 42, layout)
	if cached {
		t.Error("first lookup should miss")
	}

	second, _, cached := cache.GetOrCompute(ids, 42, layout)
	if !cached {
		t.Error("second lookup should hit")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cached position %d = %+v, want %+v", i, second[i], first[i])
		}
	}

	hits, misses, hitRate := cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses, want 1/1", hits, misses)
	}
	if hitRate != 0.5 {
		t.Errorf("hitRate = %v, want 0.5", hitRate)
	}
}

func TestLayoutCacheOrderInsensitive(t *testing.T) {
	cache := NewLayoutCache(4)
	layout := NewConstellationLayout(nil)

	forward, _, _ := cache.GetOrCompute([]string{"a", "b", "c"}, 3, layout)
	backward, ok := cache.Get([]string{"c", "b", "a"}, 3)
	if !ok {
		t.Fatal("reordered ids should hit the same entry")
	}
	if backward[0] != forward[2] || backward[2] != forward[0] || backward[1] != forward[1] {
		t.Errorf("cached layout not re-aligned: %v vs %v", forward, backward)
	}
}

func TestLayoutCacheKeyChanges(t *testing.T) {
	cache := NewLayoutCache(4)
	layout := NewConstellationLayout(nil)
	cache.GetOrCompute([]string{"a", "b"}, 1, layout)

	if _, ok := cache.Get([]string{"a", "b"}, 2); ok {
		t.Error("different seed should miss")
	}
	if _, ok := cache.Get([]string{"a", "b", "c"}, 1); ok {
		t.Error("different id set should miss")
	}
	if _, ok := cache.Get([]string{"a", "b"}, 1); !ok {
		t.Error("original key should still hit")
	}
}

func TestLayoutCacheEviction(t *testing.T) {
	cache := NewLayoutCache(2)
	layout := NewConstellationLayout(nil)

	cache.GetOrCompute([]string{"a"}, 1, layout)
	cache.GetOrCompute([]string{"a"}, 2, layout)
	cache.Get([]string{"a"}, 1) // touch seed 1 so seed 2 is least recent
	cache.GetOrCompute([]string{"a"}, 3, layout)

	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}
	if _, ok := cache.Get([]string{"a"}, 2); ok {
		t.Error("least recently used entry should have been evicted")
	}
	if _, ok := cache.Get([]string{"a"}, 1); !ok {
		t.Error("recently used entry should survive")
	}
}

func TestLayoutCacheInvalidate(t *testing.T) {
	cache := NewLayoutCache(0)
	layout := NewConstellationLayout(nil)
	cache.GetOrCompute([]string{"a", "b"}, 1, layout)

	cache.Invalidate()

	if cache.Size() != 0 {
		t.Errorf("Size() = %d after Invalidate, want 0", cache.Size())
	}
	if _, ok := cache.Get([]string{"a", "b"}, 1); ok {
		t.Error("invalidated entry should miss")
	}
}

func TestLayoutCacheConcurrent(t *testing.T) {
	cache := NewLayoutCache(8)
	layout := NewConstellationLayout(nil)
	ids := habitIDs(12)
	want := layout.ComputeLayout(ids, 5)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, _ := cache.GetOrCompute(ids, 5, layout)
			for j := range want {
				if got[j] != want[j] {
					t.Errorf("concurrent lookup returned %+v at %d, want %+v", got[j], j, want[j])
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewCacheKey(t *testing.T) {
	a := NewCacheKey([]string{"x", "y"}, 1)
	b := NewCacheKey([]string{"y", "x"}, 1)
	c := NewCacheKey([]string{"x", "y"}, 2)

	if a != b {
		t.Error("key should not depend on id order")
	}
	if a == c {
		t.Error("key should depend on seed")
	}
}

func TestLayoutCacheHitReturnsComputedStats(t *testing.T) {
	cache := NewLayoutCache(4)
	layout := NewConstellationLayout(nil)
	ids := habitIDs(12)

	_, computed, cached := cache.GetOrCompute(ids, 8, layout)
	if cached || computed.Total() != len(ids) {
		t.Fatalf("first lookup: cached=%v stats=%+v", cached, computed)
	}

	_, hit, cached := cache.GetOrCompute(ids, 8, layout)
	if !cached {
		t.Fatal("second lookup should hit")
	}
	if hit != computed {
		t.Errorf("stats on hit = %+v, want %+v", hit, computed)
	}
}

func TestLayoutCacheMissingIDUsesLayoutCenter(t *testing.T) {
	cache := NewLayoutCache(4)
	layout := NewConstellationLayout(&LayoutConfig{Size: 200})
	ids := []string{"a", "b"}

	cache.Put(ids, 1, []Position{{X: 20, Y: 30}}, PlacementStats{}, layout.Center())
	got, ok := cache.Get(ids, 1)
	if !ok {
		t.Fatal("expected hit")
	}
	if got[0] != (Position{X: 20, Y: 30}) {
		t.Errorf("stored position = %+v", got[0])
	}
	if want := (Position{X: 100, Y: 100}); got[1] != want {
		t.Errorf("missing id placed at %+v, want layout center %+v", got[1], want)
	}
}
