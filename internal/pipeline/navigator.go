package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/render"
)

// defaultMaxPagesPerSite is the hard bound on page fetches for one
// starting URL, regardless of pagination hints.
const defaultMaxPagesPerSite = 3

// actionWaitMillis is how long a simulated pagination click waits for
// the page to update before content capture.
const actionWaitMillis = 3000

// Navigator walks a single site starting from one URL: fetch,
// normalize, extract, decide the next page action, repeat. Termination
// is guaranteed by the page budget and a visited-set cycle guard.
type Navigator struct {
	renderer  render.Renderer
	extractor extract.Extractor
	maxPages  int
	minChars  int
}

// NewNavigator creates a Navigator. maxPages and minChars fall back to
// defaults when non-positive.
func NewNavigator(renderer render.Renderer, extractor extract.Extractor, maxPages, minChars int) *Navigator {
	if maxPages <= 0 {
		maxPages = defaultMaxPagesPerSite
	}
	if minChars <= 0 {
		minChars = defaultMinContentChars
	}
	return &Navigator{
		renderer:  renderer,
		extractor: extractor,
		maxPages:  maxPages,
		minChars:  minChars,
	}
}

// ExtractionPolicy reports the failure policy applied to the
// extraction step.
func (n *Navigator) ExtractionPolicy() FailurePolicy { return FailClosedEmpty }

// Crawl runs the state machine for one starting URL and returns every
// company materialized along the way. Fetch failures and extraction
// failures are normal stopping conditions, not errors.
func (n *Navigator) Crawl(ctx context.Context, startURL, query string) []model.Company {
	log := zap.L().With(zap.String("start_url", startURL))

	var companies []model.Company
	currentURL := startURL
	pagesVisited := 0
	visited := make(map[string]struct{})

	// In-page action queued by the previous page's extraction, to be
	// executed on the next fetch of the same URL.
	var pendingAction *render.Action

	for currentURL != "" && pagesVisited < n.maxPages {
		// Cycle guard: a revisit with no pending action means static
		// pagination is looping us back; stop. With an action pending
		// the same URL may legitimately render new content.
		if pendingAction == nil {
			if _, ok := visited[currentURL]; ok {
				log.Debug("crawl: url already visited, stopping", zap.String("url", currentURL))
				break
			}
		}
		visited[currentURL] = struct{}{}

		page, err := n.renderer.Render(ctx, currentURL, pendingAction)
		// The action is single-use whatever the outcome.
		pendingAction = nil
		pagesVisited++

		if err != nil || page.Empty() {
			log.Info("crawl: fetch produced no content, stopping",
				zap.String("url", currentURL),
				zap.Int("pages_visited", pagesVisited),
				zap.Error(err),
			)
			break
		}

		content := SelectContent(page, n.minChars)
		summary := extract.ElementSummary(page.HTML)

		result, extractErr := n.extractor.Extract(ctx, content, summary, query)
		if extractErr != nil || result == nil {
			log.Warn("crawl: extraction failed, continuing with empty result",
				zap.String("url", currentURL),
				zap.String("policy", n.ExtractionPolicy().String()),
				zap.Error(extractErr),
			)
			result = extract.EmptyResult()
		}

		for _, e := range result.Entities {
			if strings.TrimSpace(e.Name) == "" {
				continue
			}
			companies = append(companies, model.Company{
				Name:        e.Name,
				Website:     e.Website,
				Description: e.Description,
				Email:       e.Email,
				Phone:       e.Phone,
				Address:     e.Address,
				SourceURL:   currentURL,
			})
		}

		log.Debug("crawl: page processed",
			zap.String("url", currentURL),
			zap.Int("entities", len(result.Entities)),
			zap.String("next_page_url", result.NextPageURL),
			zap.String("pagination_selector", result.PaginationSelector),
		)

		// Decide the next state. A URL change is the most reliable
		// signal; an in-page control click is the fallback.
		switch {
		case result.NextPageURL != "" && result.NextPageURL != currentURL && strings.HasPrefix(result.NextPageURL, "http"):
			currentURL = result.NextPageURL
		case result.PaginationSelector != "":
			pendingAction = &render.Action{
				Selector:   result.PaginationSelector,
				WaitMillis: actionWaitMillis,
			}
		default:
			currentURL = ""
		}
	}

	log.Info("crawl: site complete",
		zap.Int("pages_visited", pagesVisited),
		zap.Int("companies", len(companies)),
	)
	return companies
}
