// Package search aggregates paged web-search results into a bounded,
// URL-deduplicated candidate list.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/searxng"
)

// defaultMaxPages caps how many search pages a single aggregation walks.
const defaultMaxPages = 6

// Aggregator pages through the search capability until it has enough
// unique candidates.
type Aggregator struct {
	client   searxng.Client
	maxPages int
}

// NewAggregator creates an Aggregator. maxPages <= 0 selects the default.
func NewAggregator(client searxng.Client, maxPages int) *Aggregator {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Aggregator{client: client, maxPages: maxPages}
}

// Aggregate issues successive paged requests, merging results into an
// order-preserving, URL-deduplicated list. It stops when the list
// reaches limit, a page yields nothing new, the page budget runs out,
// or the search capability fails. Sub-call failures are never
// propagated: whatever accumulated so far is returned.
func (a *Aggregator) Aggregate(ctx context.Context, query string, limit int) []model.SearchCandidate {
	log := zap.L().With(zap.String("query", query))

	var candidates []model.SearchCandidate
	seen := make(map[string]struct{})

	for page := 1; len(candidates) < limit && page <= a.maxPages; page++ {
		resp, err := a.client.Search(ctx, query, page)
		if err != nil {
			log.Warn("search: page request failed, stopping",
				zap.Int("page", page),
				zap.Error(err),
			)
			break
		}
		if len(resp.Results) == 0 {
			break
		}

		added := 0
		for _, r := range resp.Results {
			if r.URL == "" {
				continue
			}
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
			candidates = append(candidates, model.SearchCandidate{
				URL:     r.URL,
				Title:   r.Title,
				Snippet: r.Content,
			})
			added++
		}

		if added == 0 {
			log.Debug("search: no new unique results, stopping pagination", zap.Int("page", page))
			break
		}
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	log.Info("search: aggregation complete", zap.Int("candidates", len(candidates)))
	return candidates
}
