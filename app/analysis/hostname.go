package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// hostnameRegexp accepts a dotted sequence of DNS labels with an alphabetic TLD
var hostnameRegexp = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

var titleCaser = cases.Title(language.English)

// NormalizeHostname reduces raw user input to a canonical hostname:
// lowercase, no scheme, no www prefix, no path or port, punycode form.
func NormalizeHostname(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty hostname")
	}

	if _, rest, found := strings.Cut(s, "://"); found {
		s = rest
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimSuffix(s, ".")

	if s == "" {
		return "", fmt.Errorf("empty hostname")
	}

	ascii, err := idna.Lookup.ToASCII(s)
	if err != nil {
		return "", fmt.Errorf("failed to normalize hostname: %w", err)
	}

	return ascii, nil
}

// IsSyntaxValid reports whether the hostname looks like a resolvable domain.
// Expects NormalizeHostname output.
func IsSyntaxValid(hostname string) bool {
	return len(hostname) <= 253 && hostnameRegexp.MatchString(hostname)
}

// CompanyNameFromHostname derives a display name from the hostname,
// e.g. "acme-tools.example.io" becomes "Acme Tools". Heuristic only;
// the research result usually overwrites it.
func CompanyNameFromHostname(hostname string) string {
	label, _, _ := strings.Cut(hostname, ".")
	if label == "" {
		return hostname
	}

	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)

	return titleCaser.String(label)
}
