// Package tracker persists per-download tracking records in SQLite.
// Each record remembers when a download was first observed, its last
// known progress, and when that progress last changed; the reconciler
// uses those timestamps to decide eviction.
package tracker
