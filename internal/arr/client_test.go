package arr_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"sweeparr/internal/arr"
)

type record map[string]any

func downloading(id string, size, left int64) record {
	return record{
		"status":               "downloading",
		"trackedDownloadState": "downloading",
		"downloadId":           id,
		"size":                 size,
		"sizeleft":             left,
	}
}

func queuePayload(records []record) []byte {
	data, err := json.Marshal(map[string]any{"records": records})
	if err != nil {
		panic(err)
	}
	return data
}

func newClient(t *testing.T, server *httptest.Server) *arr.Client {
	t.Helper()
	client, err := arr.New(arr.KindSonarr, server.URL, "key-123")
	if err != nil {
		t.Fatalf("arr.New failed: %v", err)
	}
	return client
}

func TestFetchActivePaginatesUntilShortPage(t *testing.T) {
	var pagesServed []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/queue" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if key := r.URL.Query().Get("apikey"); key != "key-123" {
			t.Fatalf("unexpected api key: %q", key)
		}
		if size := r.URL.Query().Get("pageSize"); size != "50" {
			t.Fatalf("unexpected page size: %q", size)
		}
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			t.Fatalf("parse page: %v", err)
		}
		pagesServed = append(pagesServed, page)

		var records []record
		switch page {
		case 1:
			for i := 0; i < 50; i++ {
				records = append(records, downloading(fmt.Sprintf("hash-%03d", i), 1000, 500))
			}
		case 2:
			records = append(records, downloading("hash-last", 2000, 0))
		default:
			t.Fatalf("unexpected page request: %d", page)
		}
		w.Write(queuePayload(records))
	}))
	defer server.Close()

	items, err := newClient(t, server).FetchActive(context.Background())
	if err != nil {
		t.Fatalf("FetchActive failed: %v", err)
	}
	if len(items) != 51 {
		t.Fatalf("expected 51 items, got %d", len(items))
	}
	if len(pagesServed) != 2 || pagesServed[0] != 1 || pagesServed[1] != 2 {
		t.Fatalf("expected pages 1,2 fetched in order, got %v", pagesServed)
	}
	if items[50].ID != "hash-last" || items[50].Progress() != 2000 {
		t.Fatalf("unexpected final item: %#v", items[50])
	}
}

func TestFetchActiveStopsOnEmptyPage(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(queuePayload(nil))
	}))
	defer server.Close()

	items, err := newClient(t, server).FetchActive(context.Background())
	if err != nil {
		t.Fatalf("FetchActive failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
	if requests != 1 {
		t.Fatalf("expected a single page request, got %d", requests)
	}
}

func TestFetchActiveFiltersInactiveEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		records := []record{
			downloading("keep-downloading", 1000, 250),
			{
				"status":               "completed",
				"trackedDownloadState": "error",
				"downloadId":           "keep-error",
				"size":                 int64(500),
				"sizeleft":             int64(0),
			},
			{
				"status":               "completed",
				"trackedDownloadState": "failed",
				"downloadId":           "keep-failed",
				"size":                 int64(500),
				"sizeleft":             int64(100),
			},
			{
				// Queued entries never enter the tracked set.
				"status":               "queued",
				"trackedDownloadState": "downloading",
				"downloadId":           "drop-queued",
				"size":                 int64(500),
				"sizeleft":             int64(500),
			},
			{
				"status":               "downloading",
				"trackedDownloadState": "importPending",
				"downloadId":           "drop-state",
				"size":                 int64(500),
				"sizeleft":             int64(0),
			},
			{
				// Missing download id is skipped, not fatal.
				"status":               "downloading",
				"trackedDownloadState": "downloading",
				"size":                 int64(500),
				"sizeleft":             int64(100),
			},
		}
		w.Write(queuePayload(records))
	}))
	defer server.Close()

	items, err := newClient(t, server).FetchActive(context.Background())
	if err != nil {
		t.Fatalf("FetchActive failed: %v", err)
	}
	expected := []string{"keep-downloading", "keep-error", "keep-failed"}
	if len(items) != len(expected) {
		t.Fatalf("expected %d items, got %d: %#v", len(expected), len(items), items)
	}
	for i, id := range expected {
		if items[i].ID != id {
			t.Fatalf("expected item %d to be %s, got %s", i, id, items[i].ID)
		}
	}
}

func TestFetchActiveCollapsesDuplicateDownloadIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		records := []record{
			downloading("season-pack", 4000, 2000),
			downloading("season-pack", 4000, 1500),
		}
		w.Write(queuePayload(records))
	}))
	defer server.Close()

	items, err := newClient(t, server).FetchActive(context.Background())
	if err != nil {
		t.Fatalf("FetchActive failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected duplicate ids collapsed, got %d items", len(items))
	}
	if items[0].Progress() != 2000 {
		t.Fatalf("expected first occurrence kept, got progress %d", items[0].Progress())
	}
}

func TestFetchActiveFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := newClient(t, server).FetchActive(context.Background()); err == nil {
		t.Fatal("expected fetch failure on 502")
	}
}

func TestDeleteEntry(t *testing.T) {
	var deleted []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if key := r.URL.Query().Get("apikey"); key != "key-123" {
			t.Fatalf("unexpected api key: %q", key)
		}
		switch r.URL.Path {
		case "/api/v3/queue/hash-1":
			deleted = append(deleted, "hash-1")
			w.WriteHeader(http.StatusOK)
		case "/api/v3/queue/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/api/v3/queue/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newClient(t, server)
	ctx := context.Background()

	if err := client.DeleteEntry(ctx, "hash-1"); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if len(deleted) != 1 {
		t.Fatalf("expected one delete, got %v", deleted)
	}
	if err := client.DeleteEntry(ctx, "gone"); err != nil {
		t.Fatalf("expected 404 treated as success, got %v", err)
	}
	if err := client.DeleteEntry(ctx, "broken"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := arr.New(arr.Kind("lidarr"), "http://localhost", "key"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := arr.New(arr.KindRadarr, "", "key"); err == nil {
		t.Fatal("expected error for missing base url")
	}
	if _, err := arr.New(arr.KindRadarr, "http://localhost", " "); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestParseKind(t *testing.T) {
	if kind, err := arr.ParseKind(" Radarr "); err != nil || kind != arr.KindRadarr {
		t.Fatalf("ParseKind radarr: kind=%q err=%v", kind, err)
	}
	if kind, err := arr.ParseKind("sonarr"); err != nil || kind != arr.KindSonarr {
		t.Fatalf("ParseKind sonarr: kind=%q err=%v", kind, err)
	}
	if _, err := arr.ParseKind("whisparr"); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}
