package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sweeparr/internal/config"
	"sweeparr/internal/tracker"
)

func writeTestConfig(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[arr]
base_url = "http://localhost:8989"
api_key = "key"
kind = "sonarr"

[store]
state_dir = "` + dir + `"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return path, cfg
}

func TestStatusReportsEmptyStore(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, err := runCommand(t, "--config", path, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "No downloads are currently tracked.") {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestStatusListsTrackedDownloads(t *testing.T) {
	path, cfg := writeTestConfig(t)

	store, err := tracker.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	now := time.Now().Truncate(time.Second).UTC()
	item := &tracker.Item{
		ID:           "hash-status",
		AddedAt:      now.Add(-2 * time.Hour),
		Progress:     1536,
		LastSeen:     now,
		LastProgress: now.Add(-time.Hour),
	}
	if err := store.Insert(context.Background(), item); err != nil {
		t.Fatalf("insert item: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, err := runCommand(t, "--config", path, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "hash-status") {
		t.Fatalf("expected tracked id in output: %q", out)
	}
	if !strings.Contains(out, "1.50 KB") {
		t.Fatalf("expected formatted progress in output: %q", out)
	}
	if !strings.Contains(out, "1 tracked download(s)") {
		t.Fatalf("expected summary line in output: %q", out)
	}
}
