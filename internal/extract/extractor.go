// Package extract turns rendered page content into structured business
// entities plus pagination hints. Two strategies implement the same
// contract: an LLM-backed extractor and a markup-heuristic extractor.
package extract

import "context"

// Entity is a raw extracted business record, before it is materialized
// into a model.Company with a source URL.
type Entity struct {
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Result is the outcome of extracting one page: entities found on it,
// plus optional pagination hints for continuing a multi-page crawl.
// NextPageURL takes priority over PaginationSelector when both are set.
type Result struct {
	Entities           []Entity `json:"companies"`
	NextPageURL        string   `json:"next_page_url,omitempty"`
	PaginationSelector string   `json:"pagination_selector,omitempty"`
	// Links holds harvested candidate company websites (heuristic
	// strategy only); advisory output, not fed back into the crawl.
	Links []string `json:"company_links,omitempty"`
}

// EmptyResult returns a Result with no entities and no hints, the
// fail-closed value for extraction errors.
func EmptyResult() *Result {
	return &Result{}
}

// Extractor produces structured entities from normalized page content.
// content is the text selected by the normalizer; markupSummary is a
// compact rendering of the page's interactive elements, used to spot
// pagination controls.
type Extractor interface {
	Extract(ctx context.Context, content, markupSummary, query string) (*Result, error)
	Name() string
}
