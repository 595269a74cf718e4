package seagrid

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// GridCache manages bound grids with LRU eviction.
//
// Binding is cheap but building polygons and spatial indexes over large
// datasets is not. The cache keeps built grids in memory, keyed however the
// caller names them (a file path, usually), and evicts the least recently
// used grids when the memory estimate exceeds the limit.
//
// Memory estimation is approximate, based on topology sizes and polygon
// vertex counts.
//
// The cache is safe for concurrent use. Grids build lazily without locking,
// so a loader should Build the grid before returning it when the cached
// grid will be shared across goroutines.
//
// Example:
//
//	cache := seagrid.NewGridCache(512 * 1024 * 1024) // 512MB limit
//
//	grid, err := cache.Get("gbr4_simple.nc", func() (*seagrid.Grid, error) {
//	    ds, err := cdfio.Open("gbr4_simple.nc")
//	    if err != nil {
//	        return nil, err
//	    }
//	    grid, err := seagrid.Bind(ds, nil)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return grid, grid.Build()
//	})
type GridCache struct {
	maxMemory  int64 // maximum memory in bytes, 0 for unlimited
	usedMemory int64 // current memory usage estimate
	grids      map[string]*gridCacheEntry
	lru        *list.List // most recent at front
	mu         sync.RWMutex
}

// gridCacheEntry tracks a cached grid and its metadata.
type gridCacheEntry struct {
	name         string
	grid         *Grid
	memorySize   int64
	element      *list.Element // position in LRU list
	lastAccessed time.Time
	accessCount  int
}

// NewGridCache creates a cache with the given memory limit in bytes.
//
// The limit is enforced approximately - usage may temporarily exceed it
// while a grid loads. Set to 0 for an unlimited cache.
func NewGridCache(maxMemoryBytes int64) *GridCache {
	return &GridCache{
		maxMemory: maxMemoryBytes,
		grids:     make(map[string]*gridCacheEntry),
		lru:       list.New(),
	}
}

// Get retrieves a grid from the cache or loads it with the given loader.
//
// On a hit the grid moves to the front of the LRU list. On a miss the
// loader runs, and the result is cached for future access; if caching fails
// (the grid alone exceeds the memory limit), the grid is still returned,
// just not retained.
func (c *GridCache) Get(name string, loader func() (*Grid, error)) (*Grid, error) {
	c.mu.RLock()
	if entry, ok := c.grids[name]; ok {
		c.mu.RUnlock()

		c.mu.Lock()
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.mu.Unlock()

		return entry.grid, nil
	}
	c.mu.RUnlock()

	grid, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load grid: %w", err)
	}

	if err := c.Add(name, grid); err != nil {
		return grid, nil
	}
	return grid, nil
}

// Add adds a grid to the cache, evicting least-recently-used grids to make
// room. It fails if the grid alone is larger than the memory limit.
func (c *GridCache) Add(name string, grid *Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.grids[name]; ok {
		entry.grid = grid
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		return nil
	}

	memSize := estimateGridMemory(grid)
	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("grid too large for cache (%d bytes > %d bytes max)",
			memSize, c.maxMemory)
	}

	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &gridCacheEntry{
		name:         name,
		grid:         grid,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.grids[name] = entry
	c.usedMemory += memSize

	return nil
}

// evictLRU removes the least recently used grid.
// Must be called with c.mu locked.
func (c *GridCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*gridCacheEntry)
	c.lru.Remove(elem)
	delete(c.grids, entry.name)
	c.usedMemory -= entry.memorySize
}

// Remove explicitly removes a grid from the cache.
func (c *GridCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.grids[name]; ok {
		c.lru.Remove(entry.element)
		delete(c.grids, name)
		c.usedMemory -= entry.memorySize
	}
}

// Clear removes every grid from the cache.
func (c *GridCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.grids = make(map[string]*gridCacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *GridCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalAccess := 0
	for _, entry := range c.grids {
		totalAccess += entry.accessCount
	}
	return CacheStats{
		GridCount:   len(c.grids),
		UsedMemory:  c.usedMemory,
		MaxMemory:   c.maxMemory,
		TotalAccess: totalAccess,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	GridCount   int   // number of grids currently cached
	UsedMemory  int64 // estimated memory usage in bytes
	MaxMemory   int64 // maximum memory limit in bytes
	TotalAccess int   // total accesses across all cached grids
}

// estimateGridMemory estimates the memory a grid holds, from whatever
// stages have been built: topology masks, polygon vertices, side mappings
// and index entries. A freshly bound grid estimates small and that is
// accurate - it holds almost nothing yet.
func estimateGridMemory(g *Grid) int64 {
	if g == nil {
		return 0
	}

	size := int64(1024)
	for _, topo := range g.topologies {
		size += int64(topo.LinearSize()) // mask bytes
	}
	for _, poly := range g.polygons {
		for _, ring := range poly {
			size += int64(len(ring)) * 16
		}
	}
	size += int64(len(g.positions)) * 8
	size += int64(len(g.cellLinear)) * 8
	size += int64(len(g.centres)+len(g.centroids)) * 16
	if g.index != nil {
		// R-tree node overhead per indexed cell.
		size += int64(len(g.cellLinear)) * 64
	}
	return size
}
