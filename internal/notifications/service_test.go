package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"coverkeep/internal/config"
	"coverkeep/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventGatherCompleted, notifications.Payload{"staged": 2}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "gather completed",
			event:         notifications.EventGatherCompleted,
			payload:       notifications.Payload{"category": "Books", "staged": 3, "failed": 1},
			expectTitle:   "coverkeep - Gather Complete",
			expectMessage: "Gathered 3 Books covers, 1 failed",
			expectTags:    "coverkeep,gather,completed",
		},
		{
			name:          "promote completed",
			event:         notifications.EventPromoteCompleted,
			payload:       notifications.Payload{"promoted": 4, "declined": 1},
			expectTitle:   "coverkeep - Catalog Updated",
			expectMessage: "Catalogued 4 covers, 1 left in staging",
			expectTags:    "coverkeep,promote,completed",
		},
		{
			name:           "error",
			event:          notifications.EventError,
			payload:        notifications.Payload{"context": "gather", "error": "quota exceeded"},
			expectTitle:    "coverkeep - Error",
			expectMessage:  "Error with gather: quota exceeded",
			expectTags:     "coverkeep,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.TimeoutSeconds = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceSkipsEmptyRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for empty run: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	for _, event := range []notifications.Event{
		notifications.EventGatherCompleted,
		notifications.EventPromoteCompleted,
		notifications.Event("unknown"),
	} {
		if err := svc.Publish(context.Background(), event, notifications.Payload{}); err != nil {
			t.Fatalf("expected no error for %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}
