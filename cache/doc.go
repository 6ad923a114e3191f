// Package cache provides the client-resident read-through cache used by the
// dashboard data layer.
//
// It provides an Engine holding TTL entries with optional oldest-insertion
// eviction, deterministic key derivation from a resource name and an unordered
// parameter set, prefix invalidation for resource families, and a generic
// read-through Fetch that never caches a failed load.
package cache
