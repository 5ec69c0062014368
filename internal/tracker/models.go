package tracker

import "time"

// Item is one tracked download observed in the remote queue.
//
// Timestamps are stored at second granularity. LastProgress never
// exceeds LastSeen: progress can only change in a pass that also saw
// the item.
type Item struct {
	ID           string
	AddedAt      time.Time
	Progress     int64
	LastSeen     time.Time
	LastProgress time.Time
}
