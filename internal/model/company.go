package model

import "strings"

// Company is a structured business record discovered during a session.
// Name and SourceURL are the only fields guaranteed non-empty in a
// stored record; everything else is best-effort.
type Company struct {
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	SourceURL   string `json:"source_url"`
}

// Identity returns the deduplication key for the company:
// the trimmed, lowercased name.
func (c Company) Identity() string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

// SearchCandidate is a URL surfaced by web search, not yet confirmed
// relevant to the query.
type SearchCandidate struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}
