package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/anthropic"
)

const filterSystemPrompt = `You are an expert at filtering search results to find pages that match the user's search intent.

The user is searching for: %q

Your task is to identify which search results are MOST LIKELY to contain:
1. Information directly related to what the user is searching for
2. Company/business listings, directories, or databases relevant to the query
3. Contact information (email, phone, address) for businesses matching the query
4. Business profiles or detailed information about companies in this domain

INCLUDE pages that:
- Directly address the user's search query
- Are industry-specific directories, catalogs, or databases matching the query
- Contain multiple business listings related to the search topic
- Are company profile pages with contact details relevant to the query
- Are B2B platforms, marketplaces, or trade databases for this industry
- List suppliers, manufacturers, distributors, or service providers matching the query

EXCLUDE pages that are clearly irrelevant:
- Generic blog posts or news articles (UNLESS they contain company listings)
- Social media personal profiles
- Job posting sites, unless the query is about jobs
- E-commerce product pages, unless the query is about finding sellers
- Wikipedia or encyclopedia pages
- Login/signup pages, paywalls, or error pages
- Forums or Q&A sites, unless they contain business recommendations

Return ONLY a JSON array of indices of relevant results.
Example: [0, 2, 4]
If no results are relevant, return: []`

const filterUserPrompt = `Search Results:
%s
Which of these search results will help find companies/businesses matching the query: %q?
Return only the JSON array of indices.`

// snippetPreviewChars caps the snippet excerpt shown per candidate.
const snippetPreviewChars = 300

// RelevanceFilter gates search candidates through an LLM classifier.
// Its policy is fail-open: if the classifier is unavailable or its
// output cannot be parsed, every candidate passes.
type RelevanceFilter struct {
	client anthropic.Client
	model  string
}

// NewRelevanceFilter creates the filter. A nil client means the
// capability is unconfigured and the filter always fails open.
func NewRelevanceFilter(client anthropic.Client, llmModel string) *RelevanceFilter {
	return &RelevanceFilter{client: client, model: llmModel}
}

// Policy reports the stage's failure policy.
func (f *RelevanceFilter) Policy() FailurePolicy { return FailOpen }

// Filter returns the URLs of candidates the classifier selects, in
// input order. Out-of-range indices from the classifier are discarded;
// classifier failure returns all candidate URLs unchanged.
func (f *RelevanceFilter) Filter(ctx context.Context, candidates []model.SearchCandidate, query string) []string {
	if len(candidates) == 0 {
		return nil
	}

	if f.client == nil || f.model == "" {
		zap.L().Warn("filter: classifier not configured, passing all candidates through")
		return allURLs(candidates)
	}

	indices, err := f.classify(ctx, candidates, query)
	if err != nil {
		zap.L().Warn("filter: classification failed, passing all candidates through", zap.Error(err))
		return allURLs(candidates)
	}

	var urls []string
	for _, idx := range indices {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		if u := candidates[idx].URL; u != "" {
			urls = append(urls, u)
		}
	}

	zap.L().Info("filter: classifier selection complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(urls)),
	)
	return urls
}

func (f *RelevanceFilter) classify(ctx context.Context, candidates []model.SearchCandidate, query string) ([]int, error) {
	var b strings.Builder
	for i, c := range candidates {
		snippet := c.Snippet
		if snippet == "" {
			snippet = "No snippet available"
		} else if len(snippet) > snippetPreviewChars {
			snippet = snippet[:snippetPreviewChars]
		}
		fmt.Fprintf(&b, "%d. URL: %s\n   Title: %s\n   Snippet: %s\n\n", i, c.URL, c.Title, snippet)
	}

	temp := 0.0
	resp, err := f.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       f.model,
		MaxTokens:   1024,
		System:      fmt.Sprintf(filterSystemPrompt, query),
		Messages:    []anthropic.Message{{Role: "user", Content: fmt.Sprintf(filterUserPrompt, b.String(), query)}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	var indices []int
	if err := json.Unmarshal([]byte(cleanJSONArray(resp.FirstText())), &indices); err != nil {
		return nil, err
	}
	return indices, nil
}

func allURLs(candidates []model.SearchCandidate) []string {
	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.URL != "" {
			urls = append(urls, c.URL)
		}
	}
	return urls
}

// cleanJSONArray strips code fences and surrounding prose down to the
// first top-level JSON array in an LLM response.
func cleanJSONArray(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
