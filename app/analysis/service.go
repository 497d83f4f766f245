package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rivalmap/rivalmap/app/auth"
	"github.com/rivalmap/rivalmap/app/cfg"
	"github.com/rivalmap/rivalmap/app/database"
	"github.com/rivalmap/rivalmap/app/research"
)

// Terminal error messages recorded on failed analyses
const (
	ErrMsgNotRealCompany = "not a real company"
	ErrMsgEmptyStrings   = "result contains empty strings, please retry"
	ErrMsgFetchFailed    = "error fetching result"
	ErrMsgTaskFailed     = "research task failed"
)

// ResearchClient is the slice of the research service client the analysis
// service depends on.
type ResearchClient interface {
	SubmitRun(ctx context.Context, input research.SubmitInput) (string, error)
	FetchResult(ctx context.Context, runID string) (map[string]interface{}, error)
}

var _ ResearchClient = (*research.Client)(nil)

// Service owns the analysis lifecycle: submission of research runs and
// handling of their webhook completions, including the recursive competitor
// fan-out for deep runs.
type Service struct {
	repo   database.AnalysisRepository
	client ResearchClient
}

func NewService(repo database.AnalysisRepository, client ResearchClient) *Service {
	return &Service{repo: repo, client: client}
}

// Submit sends a research run for the hostname to the external service and
// creates the pending record. No record is created when submission fails.
func (s *Service) Submit(ctx context.Context, hostname string, deep bool, user auth.User) error {
	c := cfg.Get()

	webhookURL := c.BaseUrl + "/webhook"
	if c.BaseUrl == "" {
		webhookURL = "http://localhost:" + c.Port + "/webhook"
	}

	runID, err := s.client.SubmitRun(ctx, research.SubmitInput{
		Hostname:        hostname,
		Deep:            deep,
		WebhookURL:      webhookURL,
		Username:        user.Username,
		ProfileImageURL: user.ProfileImageURL,
	})
	if err != nil {
		return fmt.Errorf("failed to submit analysis for %s: %w", hostname, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	record := database.Analysis{
		Hostname:        hostname,
		CompanyDomain:   hostname,
		CompanyName:     CompanyNameFromHostname(hostname),
		Status:          database.StatusPending,
		Username:        user.Username,
		ProfileImageURL: user.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(record); err != nil {
		return fmt.Errorf("failed to create analysis record: %w", err)
	}

	slog.Info("Analysis submitted", "hostname", hostname, "deep", deep, "run_id", runID, "username", user.Username)

	return nil
}

// HandleCompletion processes a verified webhook event. Every event reaching
// a completed or failed status ends with the record in a done state; fetch
// and quality failures are terminalized onto the record rather than
// surfaced, because nobody is waiting synchronously on the webhook response.
func (s *Service) HandleCompletion(ctx context.Context, ev *research.Event) error {
	if ev.Type != research.EventTypeStatus {
		slog.Debug("Ignoring webhook event", "type", ev.Type)
		return nil
	}

	hostname := ev.Data.Metadata.Hostname
	if hostname == "" {
		return fmt.Errorf("event %s has no hostname metadata", ev.Data.RunID)
	}

	switch ev.Data.Status {
	case research.StatusCompleted:
		return s.handleCompleted(ctx, ev, hostname)
	case research.StatusFailed:
		message := ErrMsgTaskFailed
		if ev.Data.Error != nil && ev.Data.Error.Message != "" {
			message = ev.Data.Error.Message
		}
		if err := s.repo.SetError(hostname, message, nil); err != nil {
			return fmt.Errorf("failed to record task failure: %w", err)
		}
		slog.Info("Analysis failed", "hostname", hostname, "run_id", ev.Data.RunID, "error", message)
		return nil
	default:
		slog.Debug("Ignoring run status", "hostname", hostname, "status", ev.Data.Status)
		return nil
	}
}

func (s *Service) handleCompleted(ctx context.Context, ev *research.Event, hostname string) error {
	content, err := s.client.FetchResult(ctx, ev.Data.RunID)
	if err != nil {
		slog.Error("Failed to fetch run result", "hostname", hostname, "run_id", ev.Data.RunID, "error", err)
		if err := s.repo.SetError(hostname, ErrMsgFetchFailed, nil); err != nil {
			return fmt.Errorf("failed to record fetch failure: %w", err)
		}
		return nil
	}

	if fits, ok := content[research.FieldFitsCriteria].(bool); ok && !fits {
		if err := s.repo.SetError(hostname, ErrMsgNotRealCompany, nil); err != nil {
			return fmt.Errorf("failed to record criteria failure: %w", err)
		}
		slog.Info("Analysis rejected", "hostname", hostname, "reason", ErrMsgNotRealCompany)
		return nil
	}

	blob, err := json.Marshal(content)
	if err != nil {
		slog.Error("Failed to serialize run result", "hostname", hostname, "error", err)
		if err := s.repo.SetError(hostname, ErrMsgFetchFailed, nil); err != nil {
			return fmt.Errorf("failed to record serialization failure: %w", err)
		}
		return nil
	}
	serialized := string(blob)

	if hasEmptyStrings(content) {
		if err := s.repo.SetError(hostname, ErrMsgEmptyStrings, &serialized); err != nil {
			return fmt.Errorf("failed to record quality failure: %w", err)
		}
		slog.Info("Analysis rejected", "hostname", hostname, "reason", "empty strings in result")
		return nil
	}

	extra := database.DenormalizedFields{
		CompanyName:         stringValue(content, research.FieldCompanyName),
		Category:            stringValue(content, research.FieldCategory),
		BusinessDescription: stringValue(content, research.FieldBusinessDescription),
		IndustrySector:      stringValue(content, research.FieldIndustrySector),
		Keywords:            stringValue(content, research.FieldKeywords),
	}
	if err := s.repo.SetResult(hostname, serialized, extra); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	slog.Info("Analysis completed", "hostname", hostname, "run_id", ev.Data.RunID)

	if ev.Data.Metadata.Deep {
		s.fanOut(ctx, hostname, content, ev.Data.Metadata)
	}

	return nil
}

// fanOut submits a non-deep analysis for every competitor discovered by a
// deep run, skipping hostnames that already have a fresh, error-free record.
// Submissions run concurrently; a failure for one competitor never fails the
// parent webhook handling.
func (s *Service) fanOut(ctx context.Context, parent string, content map[string]interface{}, meta research.Metadata) {
	hostnames := CompetitorHostnames(content)

	var g errgroup.Group
	for _, hostname := range hostnames {
		if hostname == parent {
			continue
		}

		g.Go(func() error {
			existing, err := s.repo.Get(hostname)
			if err != nil {
				slog.Error("Fan-out lookup failed", "hostname", hostname, "error", err)
				return nil
			}
			if existing != nil && existing.Error == nil && !IsStale(existing) {
				slog.Debug("Fan-out skipped, record is fresh", "hostname", hostname)
				return nil
			}
			if existing != nil {
				if err := s.repo.Delete(hostname); err != nil {
					slog.Error("Fan-out delete failed", "hostname", hostname, "error", err)
					return nil
				}
			}

			user := auth.User{
				Authenticated:   true,
				Username:        meta.Username,
				ProfileImageURL: meta.ProfileImageURL,
			}
			if err := s.Submit(ctx, hostname, false, user); err != nil {
				slog.Error("Fan-out submission failed", "hostname", hostname, "parent", parent, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

// CompetitorHostnames extracts the normalized, deduplicated competitor
// hostnames from a result payload.
func CompetitorHostnames(content map[string]interface{}) []string {
	raw, ok := content[research.FieldCompetitors].([]interface{})
	if !ok {
		return nil
	}

	seen := make(map[string]bool, len(raw))
	var hostnames []string
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		hostname, err := NormalizeHostname(stringValue(entry, "hostname"))
		if err != nil || !IsSyntaxValid(hostname) || seen[hostname] {
			continue
		}
		seen[hostname] = true
		hostnames = append(hostnames, hostname)
	}

	return hostnames
}
