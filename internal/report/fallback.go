package report

import (
	"html"
	"strings"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

const fallbackHeader = `<!DOCTYPE html>
<html>
<head>
    <title>CreatorPulse Fallback Report</title>
    <style>
        body { font-family: sans-serif; line-height: 1.6; }
        ul { list-style-type: none; padding-left: 0; }
        li { margin-bottom: 10px; }
        a { text-decoration: none; color: #0066cc; }
        small { color: #888; }
    </style>
</head>
<body>
    <h1>CreatorPulse Fallback Report</h1>
    <p>The language model failed to generate a report. Here is a raw list of the latest items:</p>
    <h2>Latest</h2>
    <ul>`

const fallbackFooter = `</ul>
</body>
</html>`

// Fallback renders the deterministic report: a minimal styled HTML page
// listing the first maxItems ranked items as "[source] linked-title
// (timestamp)" bullets. Every interpolated field is HTML-escaped.
func Fallback(items []domain.Item, maxItems int) string {
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	var b strings.Builder
	b.WriteString(fallbackHeader)
	for _, it := range items {
		published := ""
		if it.PublishedAt != nil {
			published = it.PublishedAt.Format(time.RFC3339)
		}
		b.WriteString("\n<li>[")
		b.WriteString(html.EscapeString(it.Source))
		b.WriteString(`] <a href="`)
		b.WriteString(html.EscapeString(it.URL))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(it.Title))
		b.WriteString("</a> <small>")
		b.WriteString(html.EscapeString(published))
		b.WriteString("</small></li>")
	}
	b.WriteString("\n")
	b.WriteString(fallbackFooter)
	return b.String()
}
