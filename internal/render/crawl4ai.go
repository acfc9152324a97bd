package render

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/pkg/crawl4ai"
)

// Crawl4AIAdapter renders pages through a hosted Crawl4AI instance.
type Crawl4AIAdapter struct {
	client crawl4ai.Client
}

// NewCrawl4AIAdapter wraps a crawl4ai client as a Renderer.
func NewCrawl4AIAdapter(client crawl4ai.Client) *Crawl4AIAdapter {
	return &Crawl4AIAdapter{client: client}
}

// Name implements Renderer.
func (a *Crawl4AIAdapter) Name() string { return "crawl4ai" }

// Render implements Renderer.
func (a *Crawl4AIAdapter) Render(ctx context.Context, url string, action *Action) (*Page, error) {
	var scripts []string
	if action != nil {
		scripts = action.Scripts()
	}

	resp, err := a.client.Crawl(ctx, crawl4ai.DefaultRequest(url, scripts))
	if err != nil {
		return nil, eris.Wrap(err, "render: crawl4ai fetch")
	}
	if len(resp.Results) == 0 {
		return nil, eris.Errorf("render: crawl4ai returned no results for %s", url)
	}

	r := resp.Results[0]
	return &Page{
		URL:      url,
		Markdown: r.Markdown.Raw,
		HTML:     r.HTML,
	}, nil
}
