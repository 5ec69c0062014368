package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sweeparr/internal/config"
	"sweeparr/internal/reconciler"
)

const userAgent = "sweeparr/0.1.0"

// Service defines the notification surface exposed to the pass runner.
type Service interface {
	NotifyPassCompleted(ctx context.Context, summary reconciler.Summary) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

// NotifyPassCompleted pushes a summary when a pass evicted anything.
// Quiet passes send nothing to keep the topic low-noise.
func (n *ntfyService) NotifyPassCompleted(ctx context.Context, summary reconciler.Summary) error {
	if summary.Evicted() == 0 {
		return nil
	}
	message := fmt.Sprintf("Evicted %d stalled and %d vanished downloads (%d active in queue)",
		summary.StalledEvicted, summary.VanishedEvicted, summary.Snapshot)
	if summary.DeleteFailures > 0 {
		message += fmt.Sprintf("\n%d remote deletes failed and may need manual cleanup", summary.DeleteFailures)
	}
	data := payload{
		title:   "Sweeparr - Queue Cleaned",
		message: message,
		tags:    []string{"sweeparr", "evicted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Sweeparr - Test",
		message:  "Notification system test",
		tags:     []string{"sweeparr", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyPassCompleted(context.Context, reconciler.Summary) error { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
