// Package render fetches fully rendered pages for the crawl pipeline.
// Implementations wrap a remote rendering service or a local headless
// browser; a Chain tries them in priority order.
package render

import (
	"context"
	"fmt"
)

// Page holds the rendered forms of a fetched URL.
type Page struct {
	URL      string
	Title    string
	Markdown string
	HTML     string
}

// Empty reports whether the fetch produced no usable content.
func (p *Page) Empty() bool {
	return p == nil || (p.Markdown == "" && p.HTML == "")
}

// Action is an in-page navigation instruction: locate a control by CSS
// selector, activate it, then wait for the page to update.
type Action struct {
	Selector   string
	WaitMillis int
}

// Scripts returns the JS snippets that perform the action.
func (a *Action) Scripts() []string {
	wait := a.WaitMillis
	if wait <= 0 {
		wait = 3000
	}
	return []string{
		fmt.Sprintf("const el = document.querySelector(%q); if(el) { el.click(); } else { console.log('selector not found'); }", a.Selector),
		fmt.Sprintf("new Promise(r => setTimeout(r, %d));", wait),
	}
}

// Renderer fetches a single URL, optionally running an in-page action
// before content capture.
type Renderer interface {
	Render(ctx context.Context, url string, action *Action) (*Page, error)
	Name() string
}
