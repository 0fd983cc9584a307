package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/tanpawarit/omega-summarizer/agent/agents/orchestrator"
	historyx "github.com/tanpawarit/omega-summarizer/agent/history"
	llmx "github.com/tanpawarit/omega-summarizer/agent/llm"
	pipelinex "github.com/tanpawarit/omega-summarizer/agent/pipeline"
	promptx "github.com/tanpawarit/omega-summarizer/agent/prompt"
	requestx "github.com/tanpawarit/omega-summarizer/agent/request"
	summarizex "github.com/tanpawarit/omega-summarizer/agent/summarize"
	toolx "github.com/tanpawarit/omega-summarizer/agent/tool"
	configx "github.com/tanpawarit/omega-summarizer/pkg/config"
	firecrawlx "github.com/tanpawarit/omega-summarizer/pkg/firecrawl"
	openaicompatx "github.com/tanpawarit/omega-summarizer/pkg/openaicompat"
	speechx "github.com/tanpawarit/omega-summarizer/pkg/speech"
	webfetchx "github.com/tanpawarit/omega-summarizer/pkg/webfetch"
	youtubex "github.com/tanpawarit/omega-summarizer/pkg/youtube"
)

type app struct {
	llm     llmx.Config
	handler *requestx.Handler
}

// newHistoryStore opens the configured history backend.
func newHistoryStore() (historyx.Store, error) {
	histCfg, err := configx.New[historyx.Config]("")
	if err != nil {
		return nil, err
	}
	upstashCfg, err := configx.New[historyx.UpstashConfig]("")
	if err != nil {
		return nil, err
	}
	redisCfg, err := configx.New[historyx.RedisConfig]("")
	if err != nil {
		return nil, err
	}
	return historyx.Open(*histCfg, *upstashCfg, *redisCfg)
}

// newApp wires every collaborator. Missing credentials never abort startup:
// the affected component reports a configuration failure per request.
func newApp(ctx context.Context) (*app, error) {
	llmCfg, err := configx.New[llmx.Config]("")
	if err != nil {
		return nil, err
	}
	prompts := promptx.LoadPromptSet()

	summarizer, err := newSummarizer(ctx, *llmCfg, prompts)
	if err != nil {
		return nil, err
	}

	article, err := newArticlePipeline(summarizer)
	if err != nil {
		return nil, err
	}

	ytCfg, err := configx.New[youtubex.Config]("")
	if err != nil {
		return nil, err
	}
	transcript := pipelinex.NewTranscript(youtubex.NewClient(*ytCfg), summarizer, summarizer)
	audio := pipelinex.NewAudio(newTranscriber(*llmCfg), summarizer)

	catalog := toolx.NewCatalog(toolx.Pipelines{
		Article: article,
		YouTube: transcript,
		Audio:   audio,
	})

	orchestrator, err := orchestratorx.New(llmx.NewProvider(*llmCfg), catalog, orchestratorx.Config{
		SystemPrompt:    prompts.System,
		DecisionTimeout: llmCfg.Timeout,
		MaxTokens:       llmCfg.DecisionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}

	store, err := newHistoryStore()
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	handler, err := requestx.New(orchestrator, store, requestx.WithDefaultModel(llmCfg.DefaultDecisionModel()))
	if err != nil {
		return nil, err
	}

	return &app{llm: *llmCfg, handler: handler}, nil
}

func newSummarizer(ctx context.Context, cfg llmx.Config, prompts promptx.PromptSet) (*summarizex.Adapter, error) {
	endpoint, err := cfg.SummarizationEndpoint()
	if err != nil {
		log.Warn().Err(err).Msg("summarization model unavailable")
		return summarizex.Unavailable(err), nil
	}
	chatModel, err := endpoint.New(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("summarization model unavailable")
		return summarizex.Unavailable(err), nil
	}
	return summarizex.New(ctx, chatModel, prompts, summarizex.WithTimeout(cfg.Timeout))
}

func newArticlePipeline(summarizer *summarizex.Adapter) (*pipelinex.Article, error) {
	fcCfg, err := configx.New[firecrawlx.Config]("")
	if err != nil {
		return nil, err
	}
	var scraper pipelinex.Scraper
	if client, err := firecrawlx.NewClient(*fcCfg); err != nil {
		log.Info().Err(err).Msg("firecrawl disabled; using local extraction")
	} else {
		scraper = client
	}

	fetchCfg, err := configx.New[webfetchx.Config]("")
	if err != nil {
		return nil, err
	}
	strategies := []pipelinex.Strategy{
		pipelinex.FirecrawlStrategy(scraper),
		pipelinex.ReadabilityStrategy(webfetchx.NewHTTPFetcher(*fetchCfg)),
	}
	if fetchCfg.BrowserFallback {
		strategies = append(strategies, pipelinex.BrowserStrategy(webfetchx.NewBrowserFetcher(*fetchCfg)))
	}
	return pipelinex.NewArticle(summarizer, strategies...), nil
}

func newTranscriber(cfg llmx.Config) pipelinex.Transcriber {
	endpoint, err := cfg.TranscriptionEndpoint()
	if err != nil {
		log.Warn().Err(err).Msg("audio transcription unavailable")
		return nil
	}
	client, err := speechx.NewClient(openaicompatx.NewClient(endpoint), endpoint.Model)
	if err != nil {
		log.Warn().Err(err).Msg("audio transcription unavailable")
		return nil
	}
	return client
}
