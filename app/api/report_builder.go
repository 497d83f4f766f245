package api

import (
	"context"
	"fmt"

	"github.com/rivalmap/rivalmap/app/database"
	"github.com/rivalmap/rivalmap/app/mcp"
	"github.com/rivalmap/rivalmap/app/render"
)

// ReportBuilder assembles Markdown reports from stored analyses, pulling in
// competitor records so their summaries can be inlined.
type ReportBuilder struct {
	repo database.AnalysisRepository
}

func NewReportBuilder(repo database.AnalysisRepository) *ReportBuilder {
	return &ReportBuilder{repo: repo}
}

var _ mcp.ReportSource = (*ReportBuilder)(nil)

func (b *ReportBuilder) MarkdownReport(ctx context.Context, hostname string) (string, error) {
	a, err := b.repo.Get(hostname)
	if err != nil {
		return "", fmt.Errorf("failed to load analysis: %w", err)
	}
	if a == nil || !a.Succeeded() || a.Result == nil {
		return "", mcp.ErrReportNotFound
	}

	report, err := render.ParseReport(*a.Result)
	if err != nil {
		return "", fmt.Errorf("failed to parse stored result: %w", err)
	}

	competitors := make(map[string]*database.Analysis)
	for _, comp := range report.Competitors {
		if comp.Hostname == "" {
			continue
		}
		rec, err := b.repo.Get(comp.Hostname)
		if err != nil {
			return "", fmt.Errorf("failed to load competitor: %w", err)
		}
		if rec != nil {
			competitors[comp.Hostname] = rec
		}
	}

	md, err := render.MarkdownReport(a, competitors)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return md, nil
}
