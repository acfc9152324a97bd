package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`)
	digitPattern = regexp.MustCompile(`\D`)
)

// linkBlacklist filters navigation, social, legal and other boilerplate
// destinations out of the harvested link set.
var linkBlacklist = []string{
	"facebook.com", "twitter.com", "instagram.com", "linkedin.com", "youtube.com",
	"google.com", "wikipedia.org", ".gov", "policies", "terms", "contact", "about",
	"login", "signin", "register", "signup", "cart", "checkout", "account", "profile",
	"ad-create", "advertise", "member", "forgot", "reset", "search", "filter", "sort",
	"privacy", "disclaimer", "sitemap", "quote", "checklist", "consultants", "services",
	"associates", "lawyers", "insurance", "designers", "compliance", "labeling",
}

const maxHarvestedLinks = 20

// HeuristicExtractor implements Extractor with markup patterns instead
// of an LLM: page title as the entity name, meta description, regex
// email/phone harvesting, and blacklist-filtered external links. It
// treats the page itself as a single aggregated entity, which is the
// best a pattern-based pass can do on directory listings.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates the pattern-based extraction strategy.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Name implements Extractor.
func (e *HeuristicExtractor) Name() string { return "heuristic" }

// Extract implements Extractor. It never fails: unparseable content
// yields an empty result.
func (e *HeuristicExtractor) Extract(_ context.Context, content, _, _ string) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return EmptyResult(), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		zap.L().Debug("extract: heuristic parse failed", zap.Error(err))
		return EmptyResult(), nil
	}

	text := doc.Text()

	name := strings.TrimSpace(doc.Find("title").First().Text())
	if name == "" {
		name = firstLine(text)
	}
	if name == "" {
		return EmptyResult(), nil
	}

	description, _ := doc.Find(`meta[name="description"]`).Attr("content")
	description = strings.TrimSpace(description)
	if description == "" {
		description = name
	}

	entity := Entity{
		Name:        name,
		Description: description,
		Email:       joinTop(dedupeStrings(emailPattern.FindAllString(text, -1)), 3),
		Phone:       joinTop(plausiblePhones(phonePattern.FindAllString(text, -1)), 3),
	}

	return &Result{
		Entities:    []Entity{entity},
		NextPageURL: nextRelLink(doc),
		Links:       harvestLinks(doc),
	}, nil
}

// harvestLinks collects absolute external links that are not on the
// boilerplate blacklist, preserving document order.
func harvestLinks(doc *goquery.Document) []string {
	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)

		if !strings.HasPrefix(lower, "http") {
			return
		}
		for _, banned := range linkBlacklist {
			if strings.Contains(lower, banned) {
				return
			}
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		if len(links) < maxHarvestedLinks {
			links = append(links, href)
		}
	})

	return links
}

// nextRelLink returns the href of a rel="next" link if one exists and
// is absolute.
func nextRelLink(doc *goquery.Document) string {
	href, _ := doc.Find(`a[rel="next"], link[rel="next"]`).First().Attr("href")
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}

// plausiblePhones filters matches down to numbers with more than 8
// digits, dropping years and short IDs the pattern also catches.
func plausiblePhones(matches []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		if len(digitPattern.ReplaceAllString(m, "")) <= 8 {
			continue
		}
		m = strings.TrimSpace(m)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func dedupeStrings(in []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func joinTop(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

func firstLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if len(trimmed) > 80 {
				trimmed = trimmed[:80]
			}
			return trimmed
		}
	}
	return ""
}
