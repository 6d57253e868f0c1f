package suppressions

// CacheStats reports lightweight decision-cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// RepoStats exposes repository-level counters and cache stats.
type RepoStats struct {
	Rules      int // number of configured suppression rules
	Suppressed uint64
	Kept       uint64
	Cache      CacheStats
}
