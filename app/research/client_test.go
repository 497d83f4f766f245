package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rivalmap/rivalmap/app/cfg"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.Set(&cfg.Cfg{
		ResearchAPIURL: server.URL,
		ResearchAPIKey: "test-key",
		RedditToolName: "reddit-research",
		RedditToolURL:  "https://reddit-tool.example.com",
		UserAgent:      "Rivalmap/test",
	})

	return NewClient()
}

func TestSubmitRun(t *testing.T) {
	var captured submitRequest
	var capturedKey string

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/runs" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		capturedKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"run_id": "run-123"})
	}))

	runID, err := client.SubmitRun(context.Background(), SubmitInput{
		Hostname:        "example.com",
		Deep:            true,
		WebhookURL:      "https://rivalmap.example.com/webhook",
		Username:        "alice",
		ProfileImageURL: "https://img.example.com/alice.png",
	})
	if err != nil {
		t.Fatalf("SubmitRun failed: %v", err)
	}
	if runID != "run-123" {
		t.Errorf("Expected run-123, got %s", runID)
	}
	if capturedKey != "test-key" {
		t.Errorf("Expected API key header, got %q", capturedKey)
	}

	if captured.Metadata.Hostname != "example.com" || !captured.Metadata.Deep {
		t.Errorf("Unexpected metadata: %+v", captured.Metadata)
	}
	if captured.Metadata.Username != "alice" {
		t.Errorf("Expected requester identity in metadata, got %q", captured.Metadata.Username)
	}
	if captured.Webhook.URL != "https://rivalmap.example.com/webhook" {
		t.Errorf("Unexpected webhook URL: %s", captured.Webhook.URL)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].Name != "reddit-research" {
		t.Errorf("Expected the Reddit tool to be attached, got %+v", captured.Tools)
	}
	if captured.OutputSchema == nil {
		t.Error("Expected an output schema")
	}
	if captured.Input == "" {
		t.Error("Expected a research prompt")
	}
}

func TestSubmitRunServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))

	if _, err := client.SubmitRun(context.Background(), SubmitInput{Hostname: "example.com"}); err == nil {
		t.Error("Expected error on 5xx response")
	}
}

func TestFetchResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/runs/run-123/result" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"run_id": "run-123",
			"output": map[string]interface{}{
				"content": map[string]interface{}{
					"company_name":          "Example Inc",
					"company_fits_criteria": true,
				},
			},
		})
	}))

	content, err := client.FetchResult(context.Background(), "run-123")
	if err != nil {
		t.Fatalf("FetchResult failed: %v", err)
	}
	if content["company_name"] != "Example Inc" {
		t.Errorf("Unexpected content: %+v", content)
	}
}

func TestFetchResultMissingContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"run_id": "run-123"})
	}))

	if _, err := client.FetchResult(context.Background(), "run-123"); err == nil {
		t.Error("Expected error for result without output content")
	}
}

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"type": "task_run.status",
		"data": {
			"run_id": "run-9",
			"status": "completed",
			"metadata": {"hostname": "example.com", "deep": true, "username": "alice"}
		}
	}`)

	ev, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if ev.Type != EventTypeStatus || ev.Data.Status != StatusCompleted {
		t.Errorf("Unexpected event: %+v", ev)
	}
	if ev.Data.Metadata.Hostname != "example.com" || !ev.Data.Metadata.Deep {
		t.Errorf("Unexpected metadata: %+v", ev.Data.Metadata)
	}

	if _, err := ParseEvent([]byte("{not json")); err == nil {
		t.Error("Expected error for malformed event")
	}
}
