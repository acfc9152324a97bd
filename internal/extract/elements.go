package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSummaryElements caps how many interactive elements the summary
// includes; past a few hundred the tail is almost always footer noise.
const maxSummaryElements = 500

// summaryAttrs are the attributes worth surfacing for pagination-control
// detection, in output order.
var summaryAttrs = []string{"id", "class", "aria-label", "title", "name", "value", "type"}

// ElementSummary renders the page's interactive elements (links,
// buttons, inputs) as compact pseudo-HTML, one element per line. The
// extractor uses it to identify pagination controls without seeing the
// full markup. Returns "" when the markup cannot be parsed.
func ElementSummary(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var lines []string
	doc.Find("a, button, input").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		tag := goquery.NodeName(s)

		var attrs []string
		if tag == "a" {
			if href, ok := s.Attr("href"); ok && href != "" {
				attrs = append(attrs, `href="`+href+`"`)
			}
		}
		for _, name := range summaryAttrs {
			if val, ok := s.Attr(name); ok && val != "" {
				attrs = append(attrs, name+`="`+val+`"`)
			}
		}

		text := strings.TrimSpace(s.Text())
		if len(text) > 50 {
			text = text[:50]
		}

		line := "<" + tag
		if len(attrs) > 0 {
			line += " " + strings.Join(attrs, " ")
		}
		line += ">" + text + "</" + tag + ">"
		lines = append(lines, line)

		return len(lines) < maxSummaryElements
	})

	return strings.Join(lines, "\n")
}
