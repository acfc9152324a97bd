package render

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries renderers in priority order, returning the first
// non-empty result.
type Chain struct {
	renderers []Renderer
}

// NewChain creates a Chain. Renderers are tried in the order given.
func NewChain(renderers ...Renderer) *Chain {
	return &Chain{renderers: renderers}
}

// Name implements Renderer.
func (c *Chain) Name() string { return "chain" }

// Render implements Renderer by delegating down the chain.
func (c *Chain) Render(ctx context.Context, url string, action *Action) (*Page, error) {
	var lastErr error
	for _, r := range c.renderers {
		page, err := r.Render(ctx, url, action)
		if err == nil && !page.Empty() {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("render: renderer failed, trying next",
				zap.String("renderer", r.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "render: all renderers failed")
	}
	return nil, eris.Errorf("render: no content for url: %s", url)
}
