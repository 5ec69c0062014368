// Package notifications pushes pass results to ntfy. When no topic is
// configured the service degrades to a noop so callers never branch.
package notifications
