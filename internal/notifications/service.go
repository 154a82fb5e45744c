package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"switchlog/internal/config"
)

const userAgent = "Switchlog/0.1.0"

// Service defines the notification surface exposed to the daemon.
type Service interface {
	NotifySessionStarted(ctx context.Context, title, rate string) error
	NotifySessionStopped(ctx context.Context, title string, cuts, unresolved int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
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
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		sessionStop: cfg.Notifications.SessionStop,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	sessionStop bool
	errors      bool
}

func (n *ntfyService) NotifySessionStarted(ctx context.Context, title, rate string) error {
	data := payload{
		title:   "Switchlog - Session Started",
		message: fmt.Sprintf("Recording %s at %s", strings.TrimSpace(title), rate),
		tags:    []string{"switchlog", "session", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionStopped(ctx context.Context, title string, cuts, unresolved int, duration time.Duration) error {
	if !n.sessionStop {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("%s: %d cuts in %s", strings.TrimSpace(title), cuts, duration)
	data := payload{
		title:    "Switchlog - Session Complete",
		message:  message,
		tags:     []string{"switchlog", "session", "completed"},
		priority: "high",
	}
	if unresolved > 0 {
		data.title = "Switchlog - Session Complete (check EDL)"
		data.message = fmt.Sprintf("%s\n%d records have unresolved timecodes", message, unresolved)
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, errContext string) error {
	if !n.errors {
		return nil
	}
	message := "Unknown error"
	if err != nil {
		message = err.Error()
	}
	if strings.TrimSpace(errContext) != "" {
		message = fmt.Sprintf("%s: %s", errContext, message)
	}
	data := payload{
		title:    "Switchlog - Error",
		message:  message,
		tags:     []string{"switchlog", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Switchlog - Test",
		message: "Notifications are working",
		tags:    []string{"switchlog", "test"},
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
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

type noopService struct{}

func (noopService) NotifySessionStarted(context.Context, string, string) error { return nil }
func (noopService) NotifySessionStopped(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
