package pipeline

import (
	"strings"

	"github.com/sells-group/leadscout/internal/render"
)

// defaultMinContentChars is the threshold below which a markdown
// rendering is considered too thin to analyze on its own.
const defaultMinContentChars = 100

// SelectContent picks the best textual representation of a rendered
// page: the markdown form when it is non-empty and at least minChars
// long, otherwise the raw markup. minChars <= 0 selects the default.
func SelectContent(page *render.Page, minChars int) string {
	if minChars <= 0 {
		minChars = defaultMinContentChars
	}
	md := strings.TrimSpace(page.Markdown)
	if md != "" && len(md) >= minChars {
		return page.Markdown
	}
	return page.HTML
}
