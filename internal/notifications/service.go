package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coverkeep/internal/config"
)

const userAgent = "coverkeep/0.1"

// Event names a notification kind.
type Event string

const (
	EventGatherCompleted  Event = "gather_completed"
	EventPromoteCompleted Event = "promote_completed"
	EventError            Event = "error"
	EventTest             Event = "test"
)

// Payload carries event fields. Missing keys render as blanks or zero.
type Payload map[string]any

func (p Payload) text(key string) string {
	if v, ok := p[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return ""
}

func (p Payload) number(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

// Service delivers notifications.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy notifier when a topic is configured and a no-op
// notifier otherwise.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

// render formats an event. Events with nothing worth reporting return false.
func render(event Event, payload Payload) (message, bool) {
	switch event {
	case EventGatherCompleted:
		staged := payload.number("staged")
		failed := payload.number("failed")
		if staged == 0 && failed == 0 {
			return message{}, false
		}
		body := fmt.Sprintf("Gathered %d %s covers", staged, payload.text("category"))
		if failed > 0 {
			body += fmt.Sprintf(", %d failed", failed)
		}
		return message{
			title: "coverkeep - Gather Complete",
			body:  body,
			tags:  []string{"coverkeep", "gather", "completed"},
		}, true
	case EventPromoteCompleted:
		promoted := payload.number("promoted")
		failed := payload.number("failed")
		if promoted == 0 && failed == 0 {
			return message{}, false
		}
		body := fmt.Sprintf("Catalogued %d covers", promoted)
		if declined := payload.number("declined"); declined > 0 {
			body += fmt.Sprintf(", %d left in staging", declined)
		}
		if failed > 0 {
			body += fmt.Sprintf(", %d failed", failed)
		}
		return message{
			title: "coverkeep - Catalog Updated",
			body:  body,
			tags:  []string{"coverkeep", "promote", "completed"},
		}, true
	case EventError:
		var b strings.Builder
		b.WriteString("Error")
		if label := payload.text("context"); label != "" {
			b.WriteString(" with ")
			b.WriteString(label)
		}
		b.WriteString(": ")
		if errText := payload.text("error"); errText != "" {
			b.WriteString(errText)
		} else {
			b.WriteString("unknown")
		}
		return message{
			title:    "coverkeep - Error",
			body:     b.String(),
			tags:     []string{"coverkeep", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "coverkeep - Test",
			body:     "Notification system test",
			tags:     []string{"coverkeep", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
