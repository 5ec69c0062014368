package testsupport

import (
	"context"
	"testing"
	"time"

	"sweeparr/internal/config"
	"sweeparr/internal/tracker"
)

// MustOpenStore opens a tracker.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *tracker.Store {
	t.Helper()

	store, err := tracker.Open(cfg)
	if err != nil {
		t.Fatalf("tracker.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedItem inserts a tracking record whose timestamps all equal seen.
func SeedItem(t testing.TB, store *tracker.Store, id string, progress int64, seen time.Time) *tracker.Item {
	t.Helper()

	item := &tracker.Item{
		ID:           id,
		AddedAt:      seen,
		Progress:     progress,
		LastSeen:     seen,
		LastProgress: seen,
	}
	if err := store.Insert(context.Background(), item); err != nil {
		t.Fatalf("store.Insert(%s): %v", id, err)
	}
	return item
}
