// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"testing"

	"sweeparr/internal/config"
)

// NewConfig produces a valid config seeded with a unique temp state
// directory per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Arr.BaseURL = "http://127.0.0.1:8989"
	cfg.Arr.APIKey = "test"
	cfg.Store.StateDir = t.TempDir()
	return &cfg
}
