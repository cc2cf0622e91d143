package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"spotwatch/internal/analysis"
	"spotwatch/internal/notifications"
	"spotwatch/internal/testsupport"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		captured []capturedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		mu.Lock()
		captured = append(captured, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), captured...)
	}
}

func sampleSummary() analysis.Summary {
	return analysis.Summary{
		RunID:      "run-1",
		Spots:      2,
		Recordings: 1200,
		Detections: 3,
		Duration:   2400 * time.Millisecond,
		PerSpot: []analysis.SpotResult{
			{SpotID: 1, SpotName: "promo", Detections: 3, Exact: 2},
			{SpotID: 2, SpotName: "quiet", Detections: 0},
		},
	}
}

func TestNewServiceReturnsNoopWhenNothingConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := notifications.NewService(cfg)
	if err := svc.NotifyRunCompleted(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop test notification to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectBody     []string
		expectTags     string
		expectPriority string
	}{
		{
			name: "run completed",
			send: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), sampleSummary())
			},
			expectTitle: "Spotwatch - Analysis Complete",
			expectBody:  []string{"3 detections across 1,200 recordings for 2 spots in 2s", "promo: 3 (2 exact)", "Run: run-1"},
			expectTags:  "spotwatch,analysis,completed",
		},
		{
			name: "error",
			send: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("database is locked"), "watch")
			},
			expectTitle:    "Spotwatch - Error",
			expectBody:     []string{"❌ Error with watch: database is locked"},
			expectTags:     "spotwatch,error,alert",
			expectPriority: "high",
		},
		{
			name: "test",
			send: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Spotwatch - Test",
			expectBody:     []string{"Notification system test"},
			expectTags:     "spotwatch,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, captured := newNtfyServer(t)
			cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))

			if err := tc.send(notifications.NewService(cfg)); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			reqs := captured()
			if len(reqs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(reqs))
			}
			got := reqs[0]
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			for _, want := range tc.expectBody {
				if !strings.Contains(got.body, want) {
					t.Fatalf("expected body to contain %q, got %q", want, got.body)
				}
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceOmitsSpotsWithoutDetections(t *testing.T) {
	server, captured := newNtfyServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))

	if err := notifications.NewService(cfg).NotifyRunCompleted(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if body := captured()[0].body; strings.Contains(body, "quiet") {
		t.Fatalf("expected spot without detections to be omitted, got %q", body)
	}
}

func TestNtfyServiceHonoursEventToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.Header.Get("Title"))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	cfg.Notifications.RunCompleted = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyRunCompleted(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("expected suppressed run notification to return nil, got %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "watch"); err != nil {
		t.Fatalf("expected suppressed error notification to return nil, got %v", err)
	}
}

func TestNtfyServiceSkipsEmptyRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for empty run")
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	if err := notifications.NewService(cfg).NotifyRunCompleted(context.Background(), analysis.Summary{}); err != nil {
		t.Fatalf("expected nil for empty run, got %v", err)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	err := notifications.NewService(cfg).TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "topic quota exceeded") {
		t.Fatalf("unexpected error %v", err)
	}
}
