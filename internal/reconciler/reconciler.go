package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sweeparr/internal/arr"
	"sweeparr/internal/tracker"
)

// RemoteRemover deletes an entry from the remote queue. Failures are
// tolerated: the remote item may already be gone.
type RemoteRemover interface {
	DeleteEntry(ctx context.Context, id string) error
}

// Summary reports what a pass did.
type Summary struct {
	Snapshot        int
	Inserted        int
	Progressed      int
	Refreshed       int
	StalledEvicted  int
	VanishedEvicted int
	DeleteFailures  int
}

// Evicted returns the total number of records destroyed by the pass.
func (s Summary) Evicted() int {
	return s.StalledEvicted + s.VanishedEvicted
}

// Reconciler runs one fetch-update-evict cycle against the store.
type Reconciler struct {
	store          *tracker.Store
	remote         RemoteRemover
	logger         *slog.Logger
	stallThreshold time.Duration
	gracePeriod    time.Duration
}

// New creates a reconciler with the given eviction thresholds.
func New(store *tracker.Store, remote RemoteRemover, stallThreshold, gracePeriod time.Duration, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:          store,
		remote:         remote,
		logger:         logger,
		stallThreshold: stallThreshold,
		gracePeriod:    gracePeriod,
	}
}

// Run executes one pass over the snapshot at time now. Store failures
// abort the pass; remote delete failures are logged and counted but
// never block the local record deletion.
func (r *Reconciler) Run(ctx context.Context, snapshot []arr.QueueItem, now time.Time) (Summary, error) {
	summary := Summary{Snapshot: len(snapshot)}

	if err := r.updatePhase(ctx, snapshot, now, &summary); err != nil {
		return summary, err
	}
	if err := r.evictPhase(ctx, snapshot, now, &summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// updatePhase walks the snapshot and brings every tracking record up to
// date with the current pass.
func (r *Reconciler) updatePhase(ctx context.Context, snapshot []arr.QueueItem, now time.Time, summary *Summary) error {
	for _, entry := range snapshot {
		progress := entry.Progress()

		record, err := r.store.GetByID(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("load record %s: %w", entry.ID, err)
		}

		switch {
		case record == nil:
			item := &tracker.Item{
				ID:           entry.ID,
				AddedAt:      now,
				Progress:     progress,
				LastSeen:     now,
				LastProgress: now,
			}
			if err := r.store.Insert(ctx, item); err != nil {
				return fmt.Errorf("insert record %s: %w", entry.ID, err)
			}
			summary.Inserted++
			r.logger.Info("tracking new download", "id", entry.ID, "progress", progress)

		case record.Progress != progress:
			// The delta may be negative; the remote never guarantees
			// monotonic progress and a regression is recorded as-is.
			if err := r.store.UpdateProgress(ctx, entry.ID, progress, now); err != nil {
				return fmt.Errorf("update record %s: %w", entry.ID, err)
			}
			summary.Progressed++
			r.logger.Debug("progress changed",
				"id", entry.ID,
				"progress", progress,
				"delta", progress-record.Progress)

		default:
			if err := r.store.Touch(ctx, entry.ID, now); err != nil {
				return fmt.Errorf("touch record %s: %w", entry.ID, err)
			}
			summary.Refreshed++
		}
	}
	return nil
}

// evictPhase walks all stored records and destroys the ones that
// breached a threshold. Records absent from the snapshot fall under the
// grace period; records still present fall under the stall threshold.
// Both comparisons are strict and use epoch-second arithmetic, so a
// record at exactly the threshold survives.
func (r *Reconciler) evictPhase(ctx context.Context, snapshot []arr.QueueItem, now time.Time, summary *Summary) error {
	present := make(map[string]struct{}, len(snapshot))
	for _, entry := range snapshot {
		present[entry.ID] = struct{}{}
	}

	records, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	for _, record := range records {
		if _, ok := present[record.ID]; !ok {
			absence := secondsBetween(record.LastSeen, now)
			if absence > int64(r.gracePeriod/time.Second) {
				r.logger.Info("evicting vanished download",
					"id", record.ID,
					"absent_hours", absence/3600)
				if err := r.evict(ctx, record.ID, summary); err != nil {
					return err
				}
				summary.VanishedEvicted++
			}
			continue
		}

		stale := secondsBetween(record.LastProgress, now)
		if stale > int64(r.stallThreshold/time.Second) {
			r.logger.Info("evicting stalled download",
				"id", record.ID,
				"stalled_hours", stale/3600)
			if err := r.evict(ctx, record.ID, summary); err != nil {
				return err
			}
			summary.StalledEvicted++
		}
	}
	return nil
}

// evict issues a best-effort remote delete and removes the local record.
func (r *Reconciler) evict(ctx context.Context, id string, summary *Summary) error {
	if err := r.remote.DeleteEntry(ctx, id); err != nil {
		summary.DeleteFailures++
		r.logger.Warn("remote delete failed", "id", id, "error", err)
	}
	if _, err := r.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove record %s: %w", id, err)
	}
	return nil
}

func secondsBetween(earlier, later time.Time) int64 {
	return later.Unix() - earlier.Unix()
}
