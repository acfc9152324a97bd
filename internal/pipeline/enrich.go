package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/pkg/anthropic"
)

const enrichSystemPrompt = `You are a data enrichment assistant.
Your task is to extract and consolidate contact information for a company from search result snippets.

Extract the following if available:
- email: company email address
- phone: company phone number
- address: physical address
- website: official website URL
- description: brief company description (2-3 sentences max)

Return JSON:
{
    "email": "...",
    "phone": "...",
    "address": "...",
    "website": "...",
    "description": "..."
}

If a field is not found, use null. Prioritize official/primary contact details.`

const enrichUserPrompt = `Company Name: %s

Search Results Context:
%s

Extract and return the contact details in JSON format.`

// Enrichment defaults.
const (
	defaultEnrichSearchLimit = 40
	defaultEnrichSnippetCap  = 20
	maxEnrichContextChars    = 10000
)

// enrichedFields is the partial field set returned by the enrichment
// capability. Absent fields decode to "".
type enrichedFields struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// Enricher fills in missing contact fields on a company by running a
// secondary search and consolidating the result snippets with an LLM.
// Its policy is fail-closed: a capability failure yields an empty
// partial and the record passes through unchanged.
type Enricher struct {
	aggregator  *search.Aggregator
	client      anthropic.Client
	model       string
	searchLimit int
	snippetCap  int
}

// NewEnricher creates an Enricher. searchLimit and snippetCap fall
// back to defaults when non-positive.
func NewEnricher(aggregator *search.Aggregator, client anthropic.Client, llmModel string, searchLimit, snippetCap int) *Enricher {
	if searchLimit <= 0 {
		searchLimit = defaultEnrichSearchLimit
	}
	if snippetCap <= 0 {
		snippetCap = defaultEnrichSnippetCap
	}
	return &Enricher{
		aggregator:  aggregator,
		client:      client,
		model:       llmModel,
		searchLimit: searchLimit,
		snippetCap:  snippetCap,
	}
}

// Policy reports the stage's failure policy.
func (e *Enricher) Policy() FailurePolicy { return FailClosedEmpty }

// Enrich returns the company with any newly found contact fields
// merged in, and whether the secondary search produced snippets to
// work with. Existing values are never overwritten by absent ones.
func (e *Enricher) Enrich(ctx context.Context, c model.Company) (model.Company, bool) {
	query := fmt.Sprintf("%s contact information", c.Name)
	candidates := e.aggregator.Aggregate(ctx, query, e.searchLimit)

	var snippets []string
	for _, cand := range candidates {
		if cand.Snippet == "" {
			continue
		}
		snippets = append(snippets, cand.Snippet)
		if len(snippets) == e.snippetCap {
			break
		}
	}

	if len(snippets) == 0 {
		return c, false
	}

	fields, err := e.consolidate(ctx, c.Name, snippets)
	if err != nil {
		zap.L().Warn("enrich: consolidation failed, passing record through",
			zap.String("company", c.Name),
			zap.String("policy", e.Policy().String()),
			zap.Error(err),
		)
		return c, true
	}

	c.Email = prefer(fields.Email, c.Email)
	c.Phone = prefer(fields.Phone, c.Phone)
	c.Address = prefer(fields.Address, c.Address)
	c.Website = prefer(fields.Website, c.Website)
	c.Description = prefer(fields.Description, c.Description)

	return c, true
}

func (e *Enricher) consolidate(ctx context.Context, name string, snippets []string) (*enrichedFields, error) {
	if e.client == nil || e.model == "" {
		return nil, eris.New("enrich: anthropic client not configured")
	}

	snippetContext := joinSnippets(snippets, maxEnrichContextChars)

	temp := 0.0
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   1024,
		System:      enrichSystemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: fmt.Sprintf(enrichUserPrompt, name, snippetContext)}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	var fields enrichedFields
	if err := json.Unmarshal([]byte(cleanJSONObject(resp.FirstText())), &fields); err != nil {
		return nil, err
	}
	return &fields, nil
}

// prefer returns the enriched value unless it is empty, in which case
// the existing value stands.
func prefer(enriched, existing string) string {
	if enriched != "" {
		return enriched
	}
	return existing
}

// joinSnippets concatenates snippets with blank lines, capped at max
// characters.
func joinSnippets(snippets []string, max int) string {
	var b []byte
	for i, s := range snippets {
		if i > 0 {
			b = append(b, "\n\n"...)
		}
		b = append(b, s...)
		if len(b) >= max {
			return string(b[:max])
		}
	}
	return string(b)
}
