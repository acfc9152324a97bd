package search

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadscout/pkg/searxng"
)

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

var _ searxng.Client = (*mockSearchClient)(nil)

func page(urls ...string) *searxng.SearchResponse {
	resp := &searxng.SearchResponse{}
	for _, u := range urls {
		resp.Results = append(resp.Results, searxng.Result{URL: u, Title: u})
	}
	return resp
}

func TestAggregate_DedupesAndTruncates(t *testing.T) {
	client := &mockSearchClient{}
	// Page one has eight results, page two repeats three of them and adds
	// seven fresh ones. Ten unique URLs satisfy the limit after two pages.
	client.On("Search", mock.Anything, "plumbers", 1).Return(page(
		"https://u1.com", "https://u2.com", "https://u3.com", "https://u4.com",
		"https://u5.com", "https://u6.com", "https://u7.com", "https://u8.com",
	), nil).Once()
	client.On("Search", mock.Anything, "plumbers", 2).Return(page(
		"https://u1.com", "https://u2.com", "https://u3.com",
		"https://u9.com", "https://u10.com", "https://u11.com", "https://u12.com",
	), nil).Once()

	agg := NewAggregator(client, 6)
	got := agg.Aggregate(context.Background(), "plumbers", 10)

	assert.Len(t, got, 10)
	seen := make(map[string]bool)
	for _, c := range got {
		assert.False(t, seen[c.URL], "duplicate URL %s", c.URL)
		seen[c.URL] = true
	}
	// Order follows the first occurrence in the result stream.
	assert.Equal(t, "https://u1.com", got[0].URL)
	assert.Equal(t, "https://u9.com", got[8].URL)
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "Search", 2)
}

func TestAggregate_StopsOnEmptyPage(t *testing.T) {
	client := &mockSearchClient{}
	client.On("Search", mock.Anything, "welders", 1).Return(page("https://a.com"), nil).Once()
	client.On("Search", mock.Anything, "welders", 2).Return(page(), nil).Once()

	agg := NewAggregator(client, 6)
	got := agg.Aggregate(context.Background(), "welders", 10)

	assert.Len(t, got, 1)
	client.AssertExpectations(t)
}

func TestAggregate_StopsWhenNothingNew(t *testing.T) {
	client := &mockSearchClient{}
	client.On("Search", mock.Anything, "bakers", 1).Return(page("https://a.com", "https://b.com"), nil).Once()
	client.On("Search", mock.Anything, "bakers", 2).Return(page("https://a.com", "https://b.com"), nil).Once()

	agg := NewAggregator(client, 6)
	got := agg.Aggregate(context.Background(), "bakers", 10)

	assert.Len(t, got, 2)
	client.AssertNumberOfCalls(t, "Search", 2)
}

func TestAggregate_StopsAtPageBudget(t *testing.T) {
	client := &mockSearchClient{}
	for p := 1; p <= 6; p++ {
		u := "https://site.com/" + string(rune('a'+p))
		client.On("Search", mock.Anything, "roofers", p).Return(page(u), nil).Once()
	}

	agg := NewAggregator(client, 6)
	got := agg.Aggregate(context.Background(), "roofers", 100)

	assert.Len(t, got, 6)
	client.AssertNumberOfCalls(t, "Search", 6)
}

func TestAggregate_ErrorReturnsPartial(t *testing.T) {
	client := &mockSearchClient{}
	client.On("Search", mock.Anything, "movers", 1).Return(page("https://a.com"), nil).Once()
	client.On("Search", mock.Anything, "movers", 2).Return(nil, eris.New("upstream 500")).Once()

	agg := NewAggregator(client, 6)
	got := agg.Aggregate(context.Background(), "movers", 10)

	assert.Len(t, got, 1)
	assert.Equal(t, "https://a.com", got[0].URL)
}

func TestAggregate_SkipsEmptyURLs(t *testing.T) {
	client := &mockSearchClient{}
	client.On("Search", mock.Anything, "cafes", 1).Return(&searxng.SearchResponse{
		Results: []searxng.Result{
			{URL: "", Title: "broken"},
			{URL: "https://cafe.com", Title: "Cafe"},
		},
	}, nil).Once()
	client.On("Search", mock.Anything, "cafes", 2).Return(page(), nil).Once()

	agg := NewAggregator(client, 6)
	got := agg.Aggregate(context.Background(), "cafes", 10)

	assert.Len(t, got, 1)
	assert.Equal(t, "https://cafe.com", got[0].URL)
}
