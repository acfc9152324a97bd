package render

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// Local renders pages with a headless Chrome instance via chromedp.
// It shares one browser context across renders; each render runs in
// its own tab. Markdown is never produced, so the normalizer falls
// back to raw HTML for locally rendered pages.
type Local struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	timeout       time.Duration
}

// NewLocal starts a shared headless browser context.
func NewLocal() *Local {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return &Local{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		timeout:       60 * time.Second,
	}
}

// Close shuts down the browser.
func (l *Local) Close() {
	l.browserCancel()
	l.allocCancel()
}

// Name implements Renderer.
func (l *Local) Name() string { return "chromedp" }

// Render implements Renderer.
func (l *Local) Render(ctx context.Context, url string, action *Action) (*Page, error) {
	tabCtx, cancel := chromedp.NewContext(l.browserCtx)
	defer cancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, l.timeout)
	defer timeoutCancel()

	// Honor caller cancellation alongside the tab timeout.
	go func() {
		select {
		case <-ctx.Done():
			timeoutCancel()
		case <-timeoutCtx.Done():
		}
	}()

	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate("window.scrollBy(0, window.innerHeight);", nil),
	}
	if action != nil {
		for _, script := range action.Scripts() {
			tasks = append(tasks, chromedp.Evaluate(script, nil))
		}
		wait := time.Duration(action.WaitMillis) * time.Millisecond
		if wait <= 0 {
			wait = 3 * time.Second
		}
		tasks = append(tasks, chromedp.Sleep(wait))
	} else {
		tasks = append(tasks, chromedp.Sleep(2*time.Second))
	}

	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, eris.Wrap(err, "render: chromedp navigate")
	}

	var title, html string
	if err := chromedp.Run(timeoutCtx, chromedp.Title(&title)); err != nil {
		return nil, eris.Wrap(err, "render: chromedp title")
	}
	if err := chromedp.Run(timeoutCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, eris.Wrap(err, "render: chromedp outer html")
	}

	return &Page{
		URL:   url,
		Title: title,
		HTML:  html,
	}, nil
}
