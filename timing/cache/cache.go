// Package cache provides an instruction cache model using Akita cache components.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `json:"hit_latency"`
	// MissLatency in cycles (includes memory access time)
	MissLatency uint64 `json:"miss_latency"`
}

// DefaultICacheConfig returns the default instruction cache configuration:
// a small 4KB, 2-way cache with 32B lines, typical of microcontroller-class
// RV32I cores.
func DefaultICacheConfig() Config {
	return Config{
		Size:          4 * 1024,
		Associativity: 2,
		BlockSize:     32,
		HitLatency:    0,
		MissLatency:   8,
	}
}

// Validate checks that the geometry describes at least one full set.
func (c Config) Validate() error {
	if c.BlockSize <= 0 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block_size must be a power of two, got %d", c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.Size < c.Associativity*c.BlockSize || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size %d is not a multiple of associativity*block_size", c.Size)
	}
	return nil
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Accesses      uint64
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Invalidations uint64
}

// Cache is a read-only instruction cache. It tracks tags only: the
// instruction bytes always come from the bus, the cache decides the fetch
// latency.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// New creates a new cache with the given configuration.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

func (c *Cache) blockAddr(addr uint32) uint64 {
	return (uint64(addr) / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// Access looks up the line holding addr, filling it on a miss.
func (c *Cache) Access(addr uint32) AccessResult {
	c.stats.Accesses++

	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU

		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(blockAddr)
	if victim != nil {
		if victim.IsValid {
			c.stats.Evictions++
		}
		victim.Tag = blockAddr
		victim.IsValid = true
		victim.IsDirty = false
		c.directory.Visit(victim)
	}

	return AccessResult{Hit: false, Latency: c.config.MissLatency}
}

// Invalidate drops the line holding addr, if present. Stores call this so
// that modified code is refetched.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		c.stats.Invalidations++
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
