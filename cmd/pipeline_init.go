package main

import (
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/pipeline"
	"github.com/sells-group/leadscout/internal/render"
	"github.com/sells-group/leadscout/internal/search"
	anthropicpkg "github.com/sells-group/leadscout/pkg/anthropic"
	"github.com/sells-group/leadscout/pkg/crawl4ai"
	"github.com/sells-group/leadscout/pkg/searxng"
)

// pipelineEnv holds the initialized clients and orchestrator needed by
// the search/enrich/serve commands.
type pipelineEnv struct {
	Orchestrator *pipeline.Orchestrator
	Buffer       *pipeline.ResultBuffer

	localRenderer *render.Local // non-nil when local fallback is enabled
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.localRenderer != nil {
		pe.localRenderer.Close()
	}
}

// initPipeline sets up the API clients and builds the orchestrator.
// Callers should defer env.Close().
func initPipeline() *pipelineEnv {
	searchClient := searxng.NewClient(
		searxng.WithBaseURL(cfg.Search.BaseURL),
		searxng.WithRateLimit(cfg.Search.RPS),
	)
	aggregator := search.NewAggregator(searchClient, cfg.Search.MaxPages)

	// The Claude-backed capabilities degrade per stage policy when no
	// key is configured: the relevance filter fails open, extraction
	// falls back to the markup heuristic, enrichment passes records
	// through unchanged.
	var aiClient anthropicpkg.Client
	if cfg.Anthropic.APIKey != "" {
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.APIKey)
	} else {
		zap.L().Warn("LEADSCOUT_ANTHROPIC_API_KEY not set, LLM capabilities disabled")
	}

	env := &pipelineEnv{}

	renderers := []render.Renderer{
		render.NewCrawl4AIAdapter(crawl4ai.NewClient(crawl4ai.WithBaseURL(cfg.Render.BaseURL))),
	}
	if cfg.Render.LocalFallback {
		env.localRenderer = render.NewLocal()
		renderers = append(renderers, env.localRenderer)
		zap.L().Info("local headless-chrome render fallback enabled")
	}
	renderer := render.NewChain(renderers...)

	var extractor extract.Extractor
	if aiClient != nil {
		extractor = extract.NewLLMExtractor(aiClient, cfg.Anthropic.ExtractModel, cfg.Anthropic.MaxTokens)
	} else {
		extractor = extract.NewHeuristicExtractor()
	}

	filter := pipeline.NewRelevanceFilter(aiClient, cfg.Anthropic.FilterModel)
	navigator := pipeline.NewNavigator(renderer, extractor, cfg.Pipeline.MaxPagesPerSite, cfg.Pipeline.MinMarkdownChars)
	enricher := pipeline.NewEnricher(aggregator, aiClient, cfg.Anthropic.EnrichModel, cfg.Pipeline.EnrichSearchLimit, cfg.Pipeline.EnrichSnippetCap)

	buffer := pipeline.NewResultBuffer()
	env.Orchestrator = pipeline.NewOrchestrator(aggregator, filter, navigator, enricher, buffer)
	env.Buffer = buffer

	zap.L().Info("pipeline initialized",
		zap.String("extractor", extractor.Name()),
		zap.Int("max_pages_per_site", cfg.Pipeline.MaxPagesPerSite),
	)
	return env
}
