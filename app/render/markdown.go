package render

import (
	"fmt"
	"strings"

	"github.com/rivalmap/rivalmap/app/database"
)

// MarkdownReport renders the full report for a completed record as Markdown,
// followed by a section per already-analyzed competitor. Competitor records
// that are pending or failed are listed by name only.
func MarkdownReport(a *database.Analysis, competitors map[string]*database.Analysis) (string, error) {
	if a.Result == nil {
		return "", fmt.Errorf("analysis for %s has no result", a.Hostname)
	}

	report, err := ParseReport(*a.Result)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s)\n\n", report.CompanyName, a.Hostname)
	fmt.Fprintf(&b, "%s\n\n", report.ExecutiveSummary)

	b.WriteString("## Company\n\n")
	writeFact(&b, "Category", report.Category)
	writeFact(&b, "Industry", report.IndustrySector)
	writeFact(&b, "Founded", report.FoundedYear)
	writeFact(&b, "Headquarters", report.Headquarters)
	writeFact(&b, "Employees", report.EmployeeCount)
	writeFact(&b, "Business model", report.BusinessModel)
	writeFact(&b, "Target market", report.TargetMarket)
	b.WriteString("\n")

	if report.BusinessDescription != "" {
		fmt.Fprintf(&b, "%s\n\n", report.BusinessDescription)
	}

	if report.FundingStory != "" {
		b.WriteString("## Funding\n\n")
		fmt.Fprintf(&b, "%s\n\n", report.FundingStory)
		writeFact(&b, "Total raised", report.TotalFunding)
		writeFact(&b, "Key investors", report.KeyInvestors)
		b.WriteString("\n")
	}

	if report.FeatureComparison != "" || report.PricingComparison != "" {
		b.WriteString("## Competitive comparison\n\n")
		if report.FeatureComparison != "" {
			fmt.Fprintf(&b, "**Features.** %s\n\n", report.FeatureComparison)
		}
		if report.PricingComparison != "" {
			fmt.Fprintf(&b, "**Pricing.** %s\n\n", report.PricingComparison)
		}
		if report.MarketPosition != "" {
			fmt.Fprintf(&b, "**Market position.** %s\n\n", report.MarketPosition)
		}
	}

	if report.RedditSentimentSummary != "" {
		fmt.Fprintf(&b, "## Reddit sentiment: %s\n\n", report.RedditSentiment)
		fmt.Fprintf(&b, "%s\n\n", report.RedditSentimentSummary)
	}

	if len(report.Competitors) > 0 {
		b.WriteString("## Competitors\n\n")
		for _, comp := range report.Competitors {
			fmt.Fprintf(&b, "### %s (%s)\n\n", comp.Name, comp.Hostname)
			fmt.Fprintf(&b, "%s\n\n", comp.Description)

			record := competitors[comp.Hostname]
			if record == nil || !record.Succeeded() || record.Result == nil {
				continue
			}
			compReport, err := ParseReport(*record.Result)
			if err != nil {
				continue
			}
			if compReport.ExecutiveSummary != "" {
				fmt.Fprintf(&b, "%s\n\n", compReport.ExecutiveSummary)
			}
		}
	}

	return b.String(), nil
}

func writeFact(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- **%s**: %s\n", label, value)
	}
}
