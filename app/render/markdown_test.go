package render

import (
	"strings"
	"testing"

	"github.com/rivalmap/rivalmap/app/database"
)

func strPtr(s string) *string { return &s }

const sampleResult = `{
	"company_name": "Example Inc",
	"category": "SaaS",
	"business_description": "Example Inc sells examples.",
	"industry_sector": "Software",
	"funding_story": "Raised a seed round in 2024.",
	"total_funding": "$3M",
	"feature_comparison": "Feature-wise Example leads.",
	"pricing_comparison": "Pricing is mid-market.",
	"reddit_sentiment": "positive",
	"reddit_sentiment_summary": "Users generally like it.",
	"executive_summary": "Example Inc is a solid SaaS company.",
	"competitors": [
		{"name": "Rival", "hostname": "rival.com", "description": "Bigger, slower."},
		{"name": "Other", "hostname": "other.io", "description": "Cheaper."}
	],
	"company_fits_criteria": true
}`

func TestMarkdownReport(t *testing.T) {
	primary := &database.Analysis{
		Hostname: "example.com",
		Status:   database.StatusDone,
		Result:   strPtr(sampleResult),
	}

	rivalResult := `{"company_name":"Rival","executive_summary":"Rival dominates enterprise.","company_fits_criteria":true}`
	competitors := map[string]*database.Analysis{
		"rival.com": {Hostname: "rival.com", Status: database.StatusDone, Result: strPtr(rivalResult)},
		// other.io has no completed record and gets no summary
	}

	md, err := MarkdownReport(primary, competitors)
	if err != nil {
		t.Fatalf("MarkdownReport failed: %v", err)
	}

	for _, expected := range []string{
		"# Example Inc (example.com)",
		"Example Inc is a solid SaaS company.",
		"## Funding",
		"### Rival (rival.com)",
		"Rival dominates enterprise.",
		"### Other (other.io)",
		"## Reddit sentiment: positive",
	} {
		if !strings.Contains(md, expected) {
			t.Errorf("Expected markdown to contain %q", expected)
		}
	}
}

func TestMarkdownReportNoResult(t *testing.T) {
	a := &database.Analysis{Hostname: "example.com", Status: database.StatusPending}
	if _, err := MarkdownReport(a, nil); err == nil {
		t.Error("Expected error for record without result")
	}
}

func TestParseReport(t *testing.T) {
	report, err := ParseReport(sampleResult)
	if err != nil {
		t.Fatalf("ParseReport failed: %v", err)
	}
	if report.CompanyName != "Example Inc" {
		t.Errorf("Unexpected company name: %s", report.CompanyName)
	}
	if len(report.Competitors) != 2 || report.Competitors[0].Hostname != "rival.com" {
		t.Errorf("Unexpected competitors: %+v", report.Competitors)
	}

	if _, err := ParseReport("{not json"); err == nil {
		t.Error("Expected error for malformed payload")
	}
}

func TestOGCard(t *testing.T) {
	svg := OGCard("example.com", "Example Inc", []string{"rival.com", "other.io"})

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("Expected a complete SVG document")
	}
	if !strings.Contains(svg, "Example Inc") {
		t.Error("Expected company name in card")
	}
	if !strings.Contains(svg, "favicons?domain=rival.com") {
		t.Error("Expected competitor favicon in card")
	}
}

func TestPlaceholderCard(t *testing.T) {
	svg := PlaceholderCard("example.com")
	if !strings.Contains(svg, "example.com") || !strings.Contains(svg, "in progress") {
		t.Error("Expected placeholder card content")
	}
}

func TestTemplatesParse(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{"index.tmpl", "detail.tmpl", "message.tmpl", "pending.tmpl", "search.tmpl", "admin.tmpl"} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("Expected template %s to be defined", name)
		}
	}
}
