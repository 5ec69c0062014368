// Package reconciler implements the stall-detection pass at the heart
// of sweeparr. Each pass runs two phases against an immutable queue
// snapshot: phase A updates or creates tracking records for every
// snapshot entry, phase B evicts records that have vanished beyond the
// grace period or stalled beyond the stall threshold. Phase A always
// completes before phase B so an item that just progressed can never be
// evicted for staleness within the same pass.
package reconciler
