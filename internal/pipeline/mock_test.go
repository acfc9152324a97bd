package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/render"
	"github.com/sells-group/leadscout/pkg/anthropic"
	"github.com/sells-group/leadscout/pkg/searxng"
)

// --- SearxNG Mock ---

type mockSearchClient struct {
	mock.Mock
}

func (m *mockSearchClient) Search(ctx context.Context, query string, page int) (*searxng.SearchResponse, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*searxng.SearchResponse), args.Error(1)
}

// --- Renderer Mock ---

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, url string, action *render.Action) (*render.Page, error) {
	args := m.Called(ctx, url, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.Page), args.Error(1)
}

func (m *mockRenderer) Name() string { return "mock" }

// --- Extractor Mock ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, content, markupSummary, query string) (*extract.Result, error) {
	args := m.Called(ctx, content, markupSummary, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extract.Result), args.Error(1)
}

func (m *mockExtractor) Name() string { return "mock" }

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

// --- Ensure interface compliance ---
var (
	_ searxng.Client    = (*mockSearchClient)(nil)
	_ render.Renderer   = (*mockRenderer)(nil)
	_ extract.Extractor = (*mockExtractor)(nil)
	_ anthropic.Client  = (*mockAnthropicClient)(nil)
)
