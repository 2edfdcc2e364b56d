// Package cache provides a generic thread-safe LRU cache.
//
// The cache holds a fixed number of entries and evicts the least recently
// used one when full, keeping memory bounded for hot-path caches such as
// rendered previews:
//
//	previews := cache.NewLRU[string, string](256)
//	previews.Put(contentHash, html)
//	if html, ok := previews.Get(contentHash); ok {
//		// serve cached render
//	}
//
// Get, Put, and Remove are O(1). An optional OnEvict callback runs for every
// entry that leaves the cache.
package cache
