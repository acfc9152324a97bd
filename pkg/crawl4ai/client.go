// Package crawl4ai provides a client for a hosted Crawl4AI rendering
// service. It fetches fully rendered pages (markdown plus raw HTML) and
// supports injecting JS snippets before content capture, which is how
// in-page pagination actions are simulated.
package crawl4ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://crawle.up.railway.app"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client defines the Crawl4AI operations used by the renderer.
type Client interface {
	Crawl(ctx context.Context, req CrawlRequest) (*CrawlResponse, error)
}

// CrawlRequest is the body for POST /crawl.
type CrawlRequest struct {
	URLs               []string `json:"urls"`
	Priority           int      `json:"priority,omitempty"`
	BrowserType        string   `json:"browser_type,omitempty"`
	Headless           bool     `json:"headless"`
	ViewportWidth      int      `json:"viewport_width,omitempty"`
	ViewportHeight     int      `json:"viewport_height,omitempty"`
	JSCode             []string `json:"js_code,omitempty"`
	WaitFor            string   `json:"wait_for,omitempty"`
	DelayBeforeReturn  int      `json:"delay_before_return,omitempty"`
	PageTimeout        int      `json:"page_timeout,omitempty"`
	Magic              bool     `json:"magic"`
	WordCountThreshold int      `json:"word_count_threshold,omitempty"`
	UserAgent          string   `json:"user_agent,omitempty"`
}

// CrawlResponse is the response from POST /crawl.
type CrawlResponse struct {
	Results []PageResult `json:"results"`
}

// PageResult is a single rendered page.
type PageResult struct {
	URL      string   `json:"url"`
	Markdown Markdown `json:"markdown"`
	HTML     string   `json:"html"`
}

// Markdown tolerates both response shapes the service emits: a plain
// string, or an object with a raw_markdown field.
type Markdown struct {
	Raw string
}

// UnmarshalJSON implements the dual-shape decode.
func (m *Markdown) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Raw = s
		return nil
	}
	var obj struct {
		RawMarkdown string `json:"raw_markdown"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return eris.Wrap(err, "crawl4ai: decode markdown field")
	}
	m.Raw = obj.RawMarkdown
	return nil
}

// MarshalJSON round-trips the string form.
func (m Markdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Raw)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Crawl4AI client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DefaultRequest returns a CrawlRequest pre-filled with the browser
// settings the pipeline uses, for a single URL and optional extra
// JS snippets. A scroll-down script always runs first so lazy-loaded
// listings are captured.
func DefaultRequest(url string, jsCode []string) CrawlRequest {
	combined := append([]string{
		"const scrollDown = async () => { window.scrollBy(0, window.innerHeight); }; scrollDown();",
	}, jsCode...)

	return CrawlRequest{
		URLs:               []string{url},
		Priority:           20,
		BrowserType:        "chromium",
		Headless:           true,
		ViewportWidth:      1920,
		ViewportHeight:     1080,
		JSCode:             combined,
		WaitFor:            "networkidle",
		DelayBeforeReturn:  3000,
		PageTimeout:        60000,
		Magic:              false,
		WordCountThreshold: 1,
		UserAgent:          defaultUserAgent,
	}
}

func (c *httpClient) Crawl(ctx context.Context, req CrawlRequest) (*CrawlResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "crawl4ai: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crawl", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "crawl4ai: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "crawl4ai: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "crawl4ai: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("crawl4ai: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result CrawlResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "crawl4ai: unmarshal response")
	}

	return &result, nil
}
