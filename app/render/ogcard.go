package render

import (
	"fmt"
	"html"
	"strings"
)

const (
	cardWidth  = 1200
	cardHeight = 630
)

// OGCard renders an SVG share card for a completed analysis: company logo,
// name and up to six competitor mini-logos.
func OGCard(hostname, companyName string, competitorHostnames []string) string {
	var b strings.Builder

	writeCardHeader(&b)

	fmt.Fprintf(&b, `<image x="80" y="120" width="128" height="128" href="%s"/>`,
		html.EscapeString(FaviconURL(hostname, 128)))
	fmt.Fprintf(&b, `<text x="80" y="330" font-size="64" font-weight="bold" fill="#1a1a2e" font-family="sans-serif">%s</text>`,
		html.EscapeString(companyName))
	fmt.Fprintf(&b, `<text x="80" y="390" font-size="32" fill="#555" font-family="sans-serif">%s</text>`,
		html.EscapeString(hostname))

	if len(competitorHostnames) > 0 {
		b.WriteString(`<text x="80" y="480" font-size="28" fill="#888" font-family="sans-serif">vs</text>`)
		x := 140
		for i, comp := range competitorHostnames {
			if i >= 6 {
				break
			}
			fmt.Fprintf(&b, `<image x="%d" y="444" width="48" height="48" href="%s"/>`,
				x, html.EscapeString(FaviconURL(comp, 64)))
			x += 64
		}
	}

	b.WriteString(`</svg>`)

	return b.String()
}

// PlaceholderCard renders the fallback share card for records without a
// completed, error-free result.
func PlaceholderCard(hostname string) string {
	var b strings.Builder

	writeCardHeader(&b)

	fmt.Fprintf(&b, `<text x="80" y="300" font-size="56" font-weight="bold" fill="#1a1a2e" font-family="sans-serif">%s</text>`,
		html.EscapeString(hostname))
	b.WriteString(`<text x="80" y="370" font-size="32" fill="#555" font-family="sans-serif">Competitive analysis in progress</text>`)

	b.WriteString(`</svg>`)

	return b.String()
}

func writeCardHeader(b *strings.Builder) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		cardWidth, cardHeight, cardWidth, cardHeight)
	b.WriteString(`<rect width="100%" height="100%" fill="#f5f5fa"/>`)
	b.WriteString(`<rect x="0" y="0" width="100%" height="12" fill="#4f46e5"/>`)
}
