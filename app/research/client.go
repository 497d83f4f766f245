package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rivalmap/rivalmap/app/cfg"
)

// Client submits research runs to the external task service and fetches
// completed results. The service performs the actual web research
// asynchronously and reports completion through a signed webhook.
type Client struct {
	baseURL    string
	apiKey     string
	tool       *ToolConfig
	userAgent  string
	httpClient *http.Client
}

func NewClient() *Client {
	c := cfg.Get()

	client := &Client{
		baseURL:   c.ResearchAPIURL,
		apiKey:    c.ResearchAPIKey,
		userAgent: c.UserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if c.RedditToolURL != "" {
		client.tool = &ToolConfig{Name: c.RedditToolName, URL: c.RedditToolURL}
	}

	return client
}

type submitRequest struct {
	Input        string                 `json:"input"`
	OutputSchema map[string]interface{} `json:"output_schema"`
	Webhook      webhookSpec            `json:"webhook"`
	Metadata     Metadata               `json:"metadata"`
	Tools        []ToolConfig           `json:"tools,omitempty"`
}

type webhookSpec struct {
	URL        string   `json:"url"`
	EventTypes []string `json:"event_types"`
}

type submitResponse struct {
	RunID string `json:"run_id"`
}

type resultResponse struct {
	RunID  string `json:"run_id"`
	Output struct {
		Content map[string]interface{} `json:"content"`
	} `json:"output"`
}

// SubmitRun submits a research run for the given hostname and returns the
// run ID. The metadata is echoed back verbatim on webhook delivery.
func (c *Client) SubmitRun(ctx context.Context, input SubmitInput) (string, error) {
	reqBody := submitRequest{
		Input:        buildPrompt(input.Hostname),
		OutputSchema: buildOutputSchema(),
		Webhook: webhookSpec{
			URL:        input.WebhookURL,
			EventTypes: []string{EventTypeStatus},
		},
		Metadata: Metadata{
			Hostname:        input.Hostname,
			Deep:            input.Deep,
			Username:        input.Username,
			ProfileImageURL: input.ProfileImageURL,
		},
	}
	if c.tool != nil {
		reqBody.Tools = []ToolConfig{*c.tool}
	}

	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, "/v1/runs", reqBody, &resp); err != nil {
		return "", fmt.Errorf("failed to submit run: %w", err)
	}
	if resp.RunID == "" {
		return "", fmt.Errorf("submit response missing run_id")
	}

	return resp.RunID, nil
}

// FetchResult fetches the structured output of a completed run
func (c *Client) FetchResult(ctx context.Context, runID string) (map[string]interface{}, error) {
	var resp resultResponse
	if err := c.do(ctx, http.MethodGet, "/v1/runs/"+runID+"/result", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch run result: %w", err)
	}
	if resp.Output.Content == nil {
		return nil, fmt.Errorf("run result has no output content")
	}

	return resp.Output.Content, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
