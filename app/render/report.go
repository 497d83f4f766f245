package render

import (
	"encoding/json"
	"fmt"
)

// Competitor is one entry of a report's competitors array
type Competitor struct {
	Name        string `json:"name"`
	Hostname    string `json:"hostname"`
	Description string `json:"description"`
}

// Report is the structured research output stored on a successful record
type Report struct {
	CompanyName            string       `json:"company_name"`
	CompanyDomain          string       `json:"company_domain"`
	Category               string       `json:"category"`
	BusinessDescription    string       `json:"business_description"`
	IndustrySector         string       `json:"industry_sector"`
	Keywords               string       `json:"keywords"`
	FoundedYear            string       `json:"founded_year"`
	Headquarters           string       `json:"headquarters"`
	EmployeeCount          string       `json:"employee_count"`
	FundingStory           string       `json:"funding_story"`
	TotalFunding           string       `json:"total_funding"`
	KeyInvestors           string       `json:"key_investors"`
	BusinessModel          string       `json:"business_model"`
	TargetMarket           string       `json:"target_market"`
	FeatureComparison      string       `json:"feature_comparison"`
	PricingComparison      string       `json:"pricing_comparison"`
	MarketPosition         string       `json:"market_position"`
	RedditSentimentSummary string       `json:"reddit_sentiment_summary"`
	RedditSentiment        string       `json:"reddit_sentiment"`
	ExecutiveSummary       string       `json:"executive_summary"`
	Competitors            []Competitor `json:"competitors"`
	CompanyFitsCriteria    bool         `json:"company_fits_criteria"`
}

// ParseReport decodes the serialized result payload of a record
func ParseReport(blob string) (*Report, error) {
	var report Report
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// FaviconURL returns a logo image URL for a hostname via a public favicon
// service, so no fetching or storage happens on our side.
func FaviconURL(hostname string, size int) string {
	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=%d", hostname, size)
}
