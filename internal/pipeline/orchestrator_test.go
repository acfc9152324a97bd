package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/event"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/render"
	"github.com/sells-group/leadscout/internal/search"
	"github.com/sells-group/leadscout/pkg/searxng"
)

type orchestratorFixture struct {
	searcher  *mockSearchClient
	renderer  *mockRenderer
	extractor *mockExtractor
	buffer    *ResultBuffer
	orch      *Orchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		searcher:  &mockSearchClient{},
		renderer:  &mockRenderer{},
		extractor: &mockExtractor{},
		buffer:    NewResultBuffer(),
	}
	agg := search.NewAggregator(f.searcher, 6)
	f.orch = NewOrchestrator(
		agg,
		NewRelevanceFilter(nil, ""), // fail-open: all candidates pass
		NewNavigator(f.renderer, f.extractor, 3, 0),
		NewEnricher(agg, nil, "", 0, 0),
		f.buffer,
	)
	return f
}

func collect(t *testing.T, events <-chan event.Event) []event.Event {
	t.Helper()
	var out []event.Event
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
}

func requireSingleTerminalDone(t *testing.T, events []event.Event) {
	t.Helper()
	require.NotEmpty(t, events)
	assert.Equal(t, event.TypeDone, events[len(events)-1].Type)
	done := 0
	for _, ev := range events {
		if ev.Type == event.TypeDone {
			done++
		}
	}
	assert.Equal(t, 1, done)
}

func TestSearchSession_HappyPath(t *testing.T) {
	f := newOrchestratorFixture()

	f.searcher.On("Search", mock.Anything, "plumbers", 1).Return(&searxng.SearchResponse{
		Results: []searxng.Result{{URL: "https://dir.com", Title: "Directory"}},
	}, nil).Once()
	f.searcher.On("Search", mock.Anything, "plumbers", 2).Return(&searxng.SearchResponse{}, nil).Once()

	f.renderer.On("Render", mock.Anything, "https://dir.com", (*render.Action)(nil)).
		Return(htmlPage("https://dir.com", "listing"), nil).Once()
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, "plumbers").
		Return(resultWith("Acme", "Binford"), nil).Once()

	events := collect(t, f.orch.Search(context.Background(), "plumbers", 10))

	requireSingleTerminalDone(t, events)
	assert.Equal(t, event.TypeStatus, events[0].Type)
	assert.Equal(t, "Searching for: plumbers", events[0].Message)

	var companies []string
	for _, ev := range events {
		if ev.Type == event.TypeCompany {
			require.NotNil(t, ev.Data)
			companies = append(companies, ev.Data.Name)
		}
	}
	assert.Equal(t, []string{"Acme", "Binford"}, companies)

	// The completed session's results are available for export.
	snap := f.buffer.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "https://dir.com", snap[0].SourceURL)
}

func TestSearchSession_NoResults(t *testing.T) {
	f := newOrchestratorFixture()
	f.searcher.On("Search", mock.Anything, "nothing", 1).
		Return(&searxng.SearchResponse{}, nil).Once()

	events := collect(t, f.orch.Search(context.Background(), "nothing", 10))

	requireSingleTerminalDone(t, events)
	var messages []string
	for _, ev := range events {
		if ev.Type == event.TypeStatus {
			messages = append(messages, ev.Message)
		}
	}
	assert.Contains(t, messages, "No URLs found from search")
}

func TestSearchSession_PerURLErrorBoundary(t *testing.T) {
	f := newOrchestratorFixture()

	f.searcher.On("Search", mock.Anything, "movers", 1).Return(&searxng.SearchResponse{
		Results: []searxng.Result{
			{URL: "https://bad.com"},
			{URL: "https://good.com"},
		},
	}, nil).Once()
	f.searcher.On("Search", mock.Anything, "movers", 2).Return(&searxng.SearchResponse{}, nil).Once()

	// First site panics mid-crawl; the session must keep going.
	f.renderer.On("Render", mock.Anything, "https://bad.com", (*render.Action)(nil)).
		Run(func(mock.Arguments) { panic("nil dereference in markup walk") }).
		Return(nil, nil).Once()
	f.renderer.On("Render", mock.Anything, "https://good.com", (*render.Action)(nil)).
		Return(htmlPage("https://good.com", "listing"), nil).Once()
	f.extractor.On("Extract", mock.Anything, mock.Anything, mock.Anything, "movers").
		Return(resultWith("Acme Movers"), nil).Once()

	events := collect(t, f.orch.Search(context.Background(), "movers", 10))

	requireSingleTerminalDone(t, events)

	var sawError, sawCompany bool
	for _, ev := range events {
		if ev.Type == event.TypeError {
			assert.Contains(t, ev.Message, "https://bad.com")
			sawError = true
		}
		if ev.Type == event.TypeCompany {
			sawCompany = true
		}
	}
	assert.True(t, sawError)
	assert.True(t, sawCompany)
	require.Len(t, f.buffer.Snapshot(), 1)
}

func TestSearchSession_EmptySiteStatus(t *testing.T) {
	f := newOrchestratorFixture()

	f.searcher.On("Search", mock.Anything, "welders", 1).Return(&searxng.SearchResponse{
		Results: []searxng.Result{{URL: "https://thin.com"}},
	}, nil).Once()
	f.searcher.On("Search", mock.Anything, "welders", 2).Return(&searxng.SearchResponse{}, nil).Once()

	f.renderer.On("Render", mock.Anything, "https://thin.com", (*render.Action)(nil)).
		Return(nil, eris.New("unreachable")).Once()

	events := collect(t, f.orch.Search(context.Background(), "welders", 10))

	requireSingleTerminalDone(t, events)
	var messages []string
	for _, ev := range events {
		if ev.Type == event.TypeStatus {
			messages = append(messages, ev.Message)
		}
	}
	assert.Contains(t, messages, "Skipped or no data: https://thin.com")
	assert.Empty(t, f.buffer.Snapshot())
}

func TestSearchSession_AbandonedDoesNotWriteBuffer(t *testing.T) {
	f := newOrchestratorFixture()
	f.buffer.Replace([]model.Company{{Name: "Stale"}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The consumer walks away mid-session: cancellation lands while the
	// search stage is still running.
	f.searcher.On("Search", mock.Anything, "plumbers", 1).
		Run(func(mock.Arguments) { cancel() }).
		Return(&searxng.SearchResponse{
			Results: []searxng.Result{{URL: "https://dir.com"}},
		}, nil).Once()
	f.searcher.On("Search", mock.Anything, "plumbers", 2).
		Return(&searxng.SearchResponse{}, nil).Maybe()

	events := collect(t, f.orch.Search(ctx, "plumbers", 10))

	for _, ev := range events {
		assert.NotEqual(t, event.TypeDone, ev.Type)
	}
	// No crawl starts and the stale results stay cleared, not replaced
	// with a partial set.
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.buffer.Snapshot())
}

func TestEnrichSession(t *testing.T) {
	f := newOrchestratorFixture()

	// "Acme" finds snippets; consolidation is unconfigured so the record
	// passes through. "Ghost" finds nothing.
	f.searcher.On("Search", mock.Anything, "Acme contact information", 1).
		Return(snippetPage("Acme info"), nil).Once()
	f.searcher.On("Search", mock.Anything, "Acme contact information", 2).
		Return(&searxng.SearchResponse{}, nil).Once()
	f.searcher.On("Search", mock.Anything, "Ghost contact information", 1).
		Return(&searxng.SearchResponse{}, nil).Once()

	input := []model.Company{
		{Name: "Acme", Email: "info@acme.com"},
		{Name: "acme"}, // duplicate, dropped
		{Name: "Ghost"},
	}

	events := collect(t, f.orch.Enrich(context.Background(), input))

	requireSingleTerminalDone(t, events)

	var messages []string
	var companies []string
	for _, ev := range events {
		switch ev.Type {
		case event.TypeStatus:
			messages = append(messages, ev.Message)
		case event.TypeCompany:
			companies = append(companies, ev.Data.Name)
		}
	}

	assert.Contains(t, messages, "Starting enrichment for 3 companies...")
	assert.Contains(t, messages, "Deduplicated to 2 unique companies")
	assert.Contains(t, messages, "Enriching 1/2: Acme")
	assert.Contains(t, messages, "  No search results for Ghost")
	// Only the record with search results emits a company event.
	assert.Equal(t, []string{"Acme"}, companies)
	assert.Contains(t, events[len(events)-1].Message, "2 companies enriched")

	// Both records land in the buffer, enriched or not.
	assert.Equal(t, 2, f.buffer.Len())
}

func TestEnrichSession_EmptyInput(t *testing.T) {
	f := newOrchestratorFixture()

	events := collect(t, f.orch.Enrich(context.Background(), nil))

	requireSingleTerminalDone(t, events)
	assert.Zero(t, f.buffer.Len())
}

func TestSearchSession_SupersedesPreviousResults(t *testing.T) {
	f := newOrchestratorFixture()
	f.buffer.Replace([]model.Company{{Name: "Old"}})

	f.searcher.On("Search", mock.Anything, "fresh", 1).
		Return(&searxng.SearchResponse{}, nil).Once()

	events := collect(t, f.orch.Search(context.Background(), "fresh", 10))

	requireSingleTerminalDone(t, events)
	assert.Empty(t, f.buffer.Snapshot())
}

func TestSearchSession_TypeVocabulary(t *testing.T) {
	f := newOrchestratorFixture()
	f.searcher.On("Search", mock.Anything, "q", 1).
		Return(&searxng.SearchResponse{}, nil).Once()

	events := collect(t, f.orch.Search(context.Background(), "q", 10))

	for _, ev := range events {
		switch ev.Type {
		case event.TypeStatus, event.TypeCompany, event.TypeError, event.TypeDone:
		default:
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	}
}
