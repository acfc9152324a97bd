package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/event"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/search"
)

// Orchestrator sequences the discovery stages for a session and emits
// an ordered event stream. One session runs at a time per stream; the
// stages within it execute sequentially so event order stays
// deterministic and load on external services stays bounded.
type Orchestrator struct {
	aggregator *search.Aggregator
	filter     *RelevanceFilter
	navigator  *Navigator
	enricher   *Enricher
	buffer     *ResultBuffer
}

// NewOrchestrator wires the stages together around a shared result
// buffer.
func NewOrchestrator(aggregator *search.Aggregator, filter *RelevanceFilter, navigator *Navigator, enricher *Enricher, buffer *ResultBuffer) *Orchestrator {
	return &Orchestrator{
		aggregator: aggregator,
		filter:     filter,
		navigator:  navigator,
		enricher:   enricher,
		buffer:     buffer,
	}
}

// Buffer exposes the session result buffer for export.
func (o *Orchestrator) Buffer() *ResultBuffer {
	return o.buffer
}

// Search runs a search-and-crawl session. The returned channel emits
// status, company and error events and is closed after exactly one
// done event. Cancelling ctx abandons the session; an abandoned
// session never writes the result buffer.
func (o *Orchestrator) Search(ctx context.Context, query string, limit int) <-chan event.Event {
	events := make(chan event.Event)
	go o.runSearch(ctx, query, limit, events)
	return events
}

func (o *Orchestrator) runSearch(ctx context.Context, query string, limit int, events chan<- event.Event) {
	defer close(events)

	sessionID := uuid.NewString()
	log := zap.L().With(zap.String("session_id", sessionID), zap.String("query", query))
	log.Info("session: search started", zap.Int("limit", limit))

	// A new session supersedes the previous session's results.
	o.buffer.Replace(nil)

	if !send(ctx, events, event.Status(fmt.Sprintf("Searching for: %s", query))) {
		return
	}

	candidates := o.aggregator.Aggregate(ctx, query, limit)
	if len(candidates) == 0 {
		if send(ctx, events, event.Status("No URLs found from search")) {
			send(ctx, events, event.Done(""))
		}
		return
	}

	if !send(ctx, events, event.Status(fmt.Sprintf("Found %d candidates. Filtering for relevance...", len(candidates)))) {
		return
	}

	urls := o.filter.Filter(ctx, candidates, query)

	if !send(ctx, events, event.Status(fmt.Sprintf("Selected %d relevant URLs. Starting crawl...", len(urls)))) {
		return
	}

	var collected []model.Company
	for _, url := range urls {
		if ctx.Err() != nil {
			log.Info("session: search abandoned", zap.Int("companies", len(collected)))
			return
		}

		if !send(ctx, events, event.Status(fmt.Sprintf("Checking URL: %s", url))) {
			return
		}

		companies, err := o.crawlSite(ctx, url, query)
		if err != nil {
			// Per-URL boundary: report and keep going with the rest.
			log.Error("session: crawl failed for url", zap.String("url", url), zap.Error(err))
			if !send(ctx, events, event.Error(fmt.Sprintf("Error crawling %s: %v", url, err))) {
				return
			}
			continue
		}

		if len(companies) == 0 {
			if !send(ctx, events, event.Status(fmt.Sprintf("Skipped or no data: %s", url))) {
				return
			}
			continue
		}

		if !send(ctx, events, event.Status(fmt.Sprintf("Found %d companies on %s", len(companies), url))) {
			return
		}
		for _, c := range companies {
			collected = append(collected, c)
			if !send(ctx, events, event.CompanyFound(c)) {
				return
			}
		}
	}

	o.buffer.Replace(collected)
	log.Info("session: search complete", zap.Int("companies", len(collected)))

	if send(ctx, events, event.Status(fmt.Sprintf("Crawling completed! Found %d companies total.", len(collected)))) {
		send(ctx, events, event.Done(""))
	}
}

// crawlSite runs the navigator for one URL behind a panic boundary, so
// a defect while processing one site cannot take down the session.
func (o *Orchestrator) crawlSite(ctx context.Context, url, query string) (companies []model.Company, err error) {
	defer func() {
		if r := recover(); r != nil {
			companies = nil
			err = fmt.Errorf("crawl panicked: %v", r)
		}
	}()
	return o.navigator.Crawl(ctx, url, query), nil
}

// Enrich runs an enrichment session over caller-supplied records:
// deduplicate, then enrich each in order. The terminal done event
// carries a summary count.
func (o *Orchestrator) Enrich(ctx context.Context, companies []model.Company) <-chan event.Event {
	events := make(chan event.Event)
	go o.runEnrich(ctx, companies, events)
	return events
}

func (o *Orchestrator) runEnrich(ctx context.Context, companies []model.Company, events chan<- event.Event) {
	defer close(events)

	sessionID := uuid.NewString()
	log := zap.L().With(zap.String("session_id", sessionID))
	log.Info("session: enrichment started", zap.Int("companies", len(companies)))

	if !send(ctx, events, event.Status(fmt.Sprintf("Starting enrichment for %d companies...", len(companies)))) {
		return
	}

	unique := Dedupe(companies)
	if !send(ctx, events, event.Status(fmt.Sprintf("Deduplicated to %d unique companies", len(unique)))) {
		return
	}

	enriched := make([]model.Company, 0, len(unique))
	for i, c := range unique {
		if ctx.Err() != nil {
			log.Info("session: enrichment abandoned", zap.Int("enriched", len(enriched)))
			return
		}

		if !send(ctx, events, event.Status(fmt.Sprintf("Enriching %d/%d: %s", i+1, len(unique), c.Name))) {
			return
		}

		result, found := o.enricher.Enrich(ctx, c)
		enriched = append(enriched, result)

		if !found {
			if !send(ctx, events, event.Status(fmt.Sprintf("  No search results for %s", c.Name))) {
				return
			}
			continue
		}

		if !send(ctx, events, event.CompanyFound(result)) {
			return
		}
	}

	o.buffer.Replace(enriched)
	log.Info("session: enrichment complete", zap.Int("companies", len(enriched)))

	send(ctx, events, event.Done(fmt.Sprintf("Enrichment complete! %d companies enriched", len(enriched))))
}

// send delivers ev unless the consumer has abandoned the session.
func send(ctx context.Context, events chan<- event.Event, ev event.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
