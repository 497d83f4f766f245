package research

import "fmt"

// Result field names referenced outside the raw payload
const (
	FieldCompanyName         = "company_name"
	FieldCategory            = "category"
	FieldBusinessDescription = "business_description"
	FieldIndustrySector      = "industry_sector"
	FieldKeywords            = "keywords"
	FieldCompetitors         = "competitors"
	FieldFitsCriteria        = "company_fits_criteria"
)

func buildPrompt(hostname string) string {
	return fmt.Sprintf(`Research the company operating at %s and produce a competitive intelligence report.

Identify the company's product, market category and industry sector. Find its main competitors (name, primary domain, one-line description of how they compete). Summarize the funding history and key investors. Compare features and pricing against the competitors. Use the Reddit research tool to gauge community sentiment about the company and its products. Finish with an executive summary.

Set company_fits_criteria to false if %s does not belong to a real, operating company.`, hostname, hostname)
}

func stringField(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

// buildOutputSchema returns the JSON schema the research service must fill.
// Every field is required; the quality gate downstream rejects results that
// satisfy the schema with empty strings.
func buildOutputSchema() map[string]interface{} {
	competitorSchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name":        stringField("Competitor company name"),
			"hostname":    stringField("Competitor primary domain, lowercase, no scheme or www"),
			"description": stringField("One line on how this competitor competes"),
		},
		"required":             []string{"name", "hostname", "description"},
		"additionalProperties": false,
	}

	properties := map[string]interface{}{
		"company_name":            stringField("Official company name"),
		"company_domain":          stringField("Primary domain of the company"),
		"category":                stringField("Product category, e.g. 'CRM' or 'observability'"),
		"business_description":    stringField("Two to three sentences on what the company does"),
		"industry_sector":         stringField("Broad industry sector"),
		"keywords":                stringField("Comma-separated search keywords for the company"),
		"founded_year":            stringField("Year the company was founded, or 'unknown'"),
		"headquarters":            stringField("Headquarters location, or 'unknown'"),
		"employee_count":          stringField("Approximate employee count or range"),
		"funding_story":           stringField("Narrative of funding rounds and investment history"),
		"total_funding":           stringField("Total funding raised, or 'unknown'"),
		"key_investors":           stringField("Notable investors, comma separated"),
		"business_model":          stringField("How the company makes money"),
		"target_market":           stringField("Who the company sells to"),
		"feature_comparison":      stringField("Narrative comparing features against the competitors"),
		"pricing_comparison":      stringField("Narrative comparing pricing against the competitors"),
		"market_position":         stringField("Assessment of the company's market position"),
		"reddit_sentiment_summary": stringField("Summary of Reddit community sentiment"),
		"reddit_sentiment": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"positive", "neutral", "negative", "mixed"},
			"description": "Overall Reddit sentiment",
		},
		"executive_summary": stringField("Executive summary of the full report"),
		"competitors": map[string]interface{}{
			"type":        "array",
			"items":       competitorSchema,
			"description": "Main competitors of the company",
		},
		"company_fits_criteria": map[string]interface{}{
			"type":        "boolean",
			"description": "False if the domain does not belong to a real, operating company",
		},
	}

	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}

	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}
