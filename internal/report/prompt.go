package report

import (
	"strings"
	"time"

	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

// promptInstructions is the fixed preamble of the generation prompt. It pins
// the output to a single self-contained HTML5 document with the report
// skeleton the frontend expects.
var promptInstructions = []string{
	"You are an expert news editor and technical report writer.",
	"Produce a FULL, self-contained daily report in **HTML5 only** (do not use Markdown).",
	"Constraints and format:",
	"- Output a valid, standalone HTML document: include <!DOCTYPE html>, <html>, <head>, and <body>.",
	"- Add a <head> with a <style> block for clean, modern email-friendly formatting:",
	"    * Font: system-ui or sans-serif.",
	"    * Light background (#f9f9f9) with card-like white sections and subtle shadows.",
	"    * Use padding, spacing, and <h1>/<h2> headings for readability.",
	"- At the top: include an <h1> titled 'CreatorPulse Daily Report' and an **Executive Summary** (3–5 sentences).",
	"- Cluster and deduplicate: combine highly similar items into one topic section.",
	"- Each topic section should include:",
	"    * A short <h2> heading (the theme/topic).",
	"    * A descriptive summary (6–8 sentences).",
	"    * 5–8 key bullet takeaways (<ul><li>).",
	"    * At most one inline image if provided (with alt text).",
	"    * A 'Read more' link to the best single source.",
	"- At the end: add a 'Key Takeaways' section in bullet points.",
	"- Keep tone precise, professional, and neutral (no hype).",
	"- Ensure everything is self-contained—no external CSS, JS, or links except for sources.",
	"Here is the data to use for the report:",
}

// BuildPrompt renders the generation prompt for at most maxItems ranked
// items: the fixed instruction block followed by one data line per item.
func BuildPrompt(items []domain.Item, maxItems int) string {
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}

	var b strings.Builder
	for _, line := range promptInstructions {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- [source=")
		b.WriteString(it.Source)
		b.WriteString("] title=")
		b.WriteString(it.Title)
		b.WriteString(" date=")
		if it.PublishedAt != nil {
			b.WriteString(it.PublishedAt.Format(time.RFC3339))
		} else {
			b.WriteString("N/A")
		}
		b.WriteString(" url=")
		b.WriteString(it.URL)
		if it.ImageURL != "" {
			b.WriteString(" image_url=")
			b.WriteString(it.ImageURL)
		}
		b.WriteString(" summary=")
		b.WriteString(strings.TrimSpace(strings.ReplaceAll(it.Summary, "\n", " ")))
	}

	return b.String()
}
