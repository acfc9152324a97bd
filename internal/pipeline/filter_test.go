package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadscout/internal/model"
)

func candidates(urls ...string) []model.SearchCandidate {
	out := make([]model.SearchCandidate, len(urls))
	for i, u := range urls {
		out[i] = model.SearchCandidate{URL: u, Title: u, Snippet: "snippet for " + u}
	}
	return out
}

func TestFilter_SelectsByIndex(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("[0, 2]"), nil).Once()

	f := NewRelevanceFilter(client, "test-model")
	got := f.Filter(context.Background(), candidates("https://a.com", "https://b.com", "https://c.com"), "plumbers")

	assert.Equal(t, []string{"https://a.com", "https://c.com"}, got)
	client.AssertExpectations(t)
}

func TestFilter_DiscardsOutOfRangeIndices(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("[1, 5, -1, 99]"), nil).Once()

	f := NewRelevanceFilter(client, "test-model")
	got := f.Filter(context.Background(), candidates("https://a.com", "https://b.com"), "plumbers")

	assert.Equal(t, []string{"https://b.com"}, got)
}

func TestFilter_FailsOpen(t *testing.T) {
	all := []string{"https://a.com", "https://b.com"}

	tests := []struct {
		name   string
		filter *RelevanceFilter
	}{
		{
			name:   "unconfigured client",
			filter: NewRelevanceFilter(nil, "test-model"),
		},
		{
			name:   "empty model",
			filter: NewRelevanceFilter(&mockAnthropicClient{}, ""),
		},
		{
			name: "classifier error",
			filter: func() *RelevanceFilter {
				client := &mockAnthropicClient{}
				client.On("CreateMessage", mock.Anything, mock.Anything).
					Return(nil, eris.New("overloaded"))
				return NewRelevanceFilter(client, "test-model")
			}(),
		},
		{
			name: "unparseable output",
			filter: func() *RelevanceFilter {
				client := &mockAnthropicClient{}
				client.On("CreateMessage", mock.Anything, mock.Anything).
					Return(textResponse("these all look great"), nil)
				return NewRelevanceFilter(client, "test-model")
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Filter(context.Background(), candidates(all...), "plumbers")
			assert.Equal(t, all, got)
		})
	}
}

func TestFilter_FencedArrayResponse(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("```json\n[1]\n```"), nil).Once()

	f := NewRelevanceFilter(client, "test-model")
	got := f.Filter(context.Background(), candidates("https://a.com", "https://b.com"), "plumbers")

	assert.Equal(t, []string{"https://b.com"}, got)
}

func TestFilter_EmptySelection(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("[]"), nil).Once()

	f := NewRelevanceFilter(client, "test-model")
	got := f.Filter(context.Background(), candidates("https://a.com"), "plumbers")

	assert.Empty(t, got)
}

func TestFilter_NoCandidates(t *testing.T) {
	f := NewRelevanceFilter(nil, "")
	assert.Nil(t, f.Filter(context.Background(), nil, "plumbers"))
}

func TestFilter_Policy(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FailOpen, NewRelevanceFilter(nil, "").Policy())
	assert.Equal(t, "fail_open", FailOpen.String())
	assert.Equal(t, "fail_closed_empty", FailClosedEmpty.String())
}
