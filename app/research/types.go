package research

import (
	"encoding/json"
	"fmt"
)

// Event types and run statuses delivered by the research service webhook
const (
	EventTypeStatus = "task_run.status"

	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Metadata is attached to a run at submission and echoed back verbatim on
// webhook delivery. It is the only channel correlating a completion event to
// the originating request context.
type Metadata struct {
	Hostname        string `json:"hostname"`
	Deep            bool   `json:"deep"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Event is the webhook envelope delivered on run status changes
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	RunID    string      `json:"run_id"`
	Status   string      `json:"status"`
	Metadata Metadata    `json:"metadata"`
	Error    *EventError `json:"error,omitempty"`
}

type EventError struct {
	Message string `json:"message"`
}

// ParseEvent decodes a webhook event envelope
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return &ev, nil
}

// SubmitInput describes a research run to submit
type SubmitInput struct {
	Hostname        string
	Deep            bool
	WebhookURL      string
	Username        string
	ProfileImageURL string
}

// ToolConfig names a remote tool the research service may call during a run
type ToolConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
