package arr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Kind selects the queue API variant.
type Kind string

const (
	KindSonarr Kind = "sonarr"
	KindRadarr Kind = "radarr"
)

// ParseKind resolves a configured variant name.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindSonarr:
		return KindSonarr, nil
	case KindRadarr:
		return KindRadarr, nil
	default:
		return "", fmt.Errorf("unknown queue kind %q", value)
	}
}

// pageSize is the fixed queue page size requested from the remote.
const pageSize = 50

// QueueItem is one active entry observed in the remote queue.
type QueueItem struct {
	ID        string
	TotalSize int64
	SizeLeft  int64
}

// Progress returns the bytes downloaded so far.
func (q QueueItem) Progress() int64 {
	return q.TotalSize - q.SizeLeft
}

type queueRecord struct {
	Status               string `json:"status"`
	TrackedDownloadState string `json:"trackedDownloadState"`
	DownloadID           string `json:"downloadId"`
	Size                 int64  `json:"size"`
	SizeLeft             int64  `json:"sizeleft"`
}

type queuePage struct {
	Records []queueRecord `json:"records"`
}

// active reports whether a record is worth tracking: not merely queued,
// and in a downloading or error/failure tracked state.
func (r queueRecord) active() bool {
	if strings.EqualFold(r.Status, "queued") {
		return false
	}
	switch strings.ToLower(r.TrackedDownloadState) {
	case "downloading", "error", "failed":
		return true
	default:
		return false
	}
}

// Client provides access to one Sonarr or Radarr queue endpoint.
type Client struct {
	kind       Kind
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a queue client.
func New(kind Kind, baseURL, apiKey string, opts ...Option) (*Client, error) {
	if kind != KindSonarr && kind != KindRadarr {
		return nil, fmt.Errorf("unknown queue kind %q", kind)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("queue base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("queue api key required")
	}
	client := &Client{
		kind:       kind,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchActive retrieves the full active-entry snapshot. Pages are fetched
// sequentially starting at 1; a page with fewer records than the page size
// is treated as the authoritative end of data, so the loop terminates even
// when the remote reports inconsistent totals. A transport failure or
// non-200 response is fatal to the whole fetch.
func (c *Client) FetchActive(ctx context.Context) ([]QueueItem, error) {
	var items []QueueItem
	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		records, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if !record.active() {
				continue
			}
			if record.DownloadID == "" {
				c.logger.Warn("skipping queue record without download id",
					"status", record.Status,
					"state", record.TrackedDownloadState)
				continue
			}
			// Sonarr reports one record per episode; entries sharing a
			// download id collapse to the first occurrence.
			if _, dup := seen[record.DownloadID]; dup {
				continue
			}
			seen[record.DownloadID] = struct{}{}
			items = append(items, QueueItem{
				ID:        record.DownloadID,
				TotalSize: record.Size,
				SizeLeft:  record.SizeLeft,
			})
		}
		if len(records) < pageSize {
			return items, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]queueRecord, error) {
	endpoint, err := url.Parse(c.baseURL + "/api/v3/queue")
	if err != nil {
		return nil, fmt.Errorf("parse queue url: %w", err)
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s queue page %d: %w", c.kind, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s queue fetch returned %d (page %d)", c.kind, resp.StatusCode, page)
	}

	var payload queuePage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode queue page %d: %w", page, err)
	}
	return payload.Records, nil
}

// DeleteEntry removes a queue entry by download id. A 404 counts as
// success because the entry may already be gone.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("download id required")
	}
	endpoint, err := url.Parse(c.baseURL + "/api/v3/queue/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("parse delete url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete queue entry %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("queue delete for %s returned %d", id, resp.StatusCode)
	}
	return nil
}
