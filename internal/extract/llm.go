package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/pkg/anthropic"
)

// Prompt-side truncation caps, in characters.
const (
	maxContentChars = 15000
	maxSummaryChars = 10000
)

const llmSystemPrompt = `You are a data extraction bot. Your job is to find and extract INDIVIDUAL COMPANIES from the webpage content.

IMPORTANT: You are looking for COMPANIES LISTED ON THE PAGE, NOT the website itself.

STEP 1: Read the content carefully
- Look for company names, business names, supplier names, manufacturer names
- These are usually in lists, tables, directories, or profiles
- Each company is a SEPARATE entry

STEP 2: Extract EACH company you find
For each company, extract:
- name: The company/business name
- website: Their website URL (if mentioned)
- email: Their email (if mentioned)
- phone: Their phone (if mentioned)
- address: Their address/location (if mentioned)
- description: What they do/sell (if mentioned)

STEP 3: What NOT to extract

DO NOT extract if the text is:
- A question or request (e.g., "I need suppliers", "Looking for...", "Anyone selling...")
- An error message (e.g., "Cloudflare", "404", "Access Denied")
- A page section (e.g., "About Us", "Contact Us", "Home")
- The website's own name (we want companies LISTED on the page, not the page itself)

PAGINATION: Also look for "Next", "Load More", or page 2, 3, etc. buttons to help us get more companies.

Return JSON:
{
  "companies": [...],
  "next_page_url": "URL if you find a next page link",
  "pagination_selector": "CSS selector for next button"
}

REMEMBER: Extract INDIVIDUAL COMPANIES from the content, not the website itself.`

const llmUserPrompt = `User Query: %s

--- PAGE CONTENT (For Companies) ---
%s

--- INTERACTIVE HTML SNIPPETS (For Pagination) ---
%s`

// LLMExtractor implements Extractor with a Claude model.
type LLMExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewLLMExtractor creates the LLM-backed extraction strategy. client
// may be nil when the capability is not configured; Extract then
// reports the misconfiguration as an error for the caller's fail-closed
// policy to absorb.
func NewLLMExtractor(client anthropic.Client, model string, maxTokens int64) *LLMExtractor {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &LLMExtractor{client: client, model: model, maxTokens: maxTokens}
}

// Name implements Extractor.
func (e *LLMExtractor) Name() string { return "llm" }

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, content, markupSummary, query string) (*Result, error) {
	if e.client == nil || e.model == "" {
		return nil, eris.New("extract: anthropic client not configured")
	}

	prompt := fmt.Sprintf(llmUserPrompt, query,
		truncate(content, maxContentChars),
		truncate(markupSummary, maxSummaryChars),
	)

	temp := 0.0
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		System:      llmSystemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: llm call")
	}

	var result Result
	if err := json.Unmarshal([]byte(cleanJSON(resp.FirstText())), &result); err != nil {
		return nil, eris.Wrap(err, "extract: parse llm response")
	}

	zap.L().Debug("extract: llm extraction complete",
		zap.Int("entities", len(result.Entities)),
		zap.String("next_page_url", result.NextPageURL),
		zap.String("pagination_selector", result.PaginationSelector),
	)

	return &result, nil
}

// truncate caps s at n bytes.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// cleanJSON strips markdown code fences and any leading/trailing prose
// around the first top-level JSON object in an LLM response.
func cleanJSON(text string) string {
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

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
