package main

import (
	"context"
	"fmt"
	"net/http"

	"ideaforge/internal/config"
	"ideaforge/internal/edit"
	"ideaforge/internal/fetchers"
	"ideaforge/internal/llm"
	"ideaforge/internal/logging"
	"ideaforge/internal/pipeline"
	"ideaforge/internal/research"
	"ideaforge/internal/search"
	"ideaforge/internal/sections"
	"ideaforge/internal/server"
	"ideaforge/internal/store"
	"ideaforge/internal/types"
)

// app is every collaborator built from one config snapshot.
type app struct {
	client   types.LLMClient
	analyzer *pipeline.Analyzer
	executor *edit.Executor
	agent    *edit.Agent
	timeouts config.Timeouts
	model    string
}

// buildApp wires the reasoning engine, search, fetchers and generators.
// st may be nil, in which case nothing is persisted or traced.
func buildApp(ctx context.Context, c *config.Config, st *store.SQLiteStore) (*app, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	timeouts, err := c.Timeouts.Parse()
	if err != nil {
		return nil, err
	}

	gcfg := llm.DefaultGeminiConfig(c.LLM.APIKey)
	if c.LLM.Model != "" {
		gcfg.Model = c.LLM.Model
	}
	gcfg.Temperature = float32(c.LLM.Temperature)
	if c.LLM.MaxOutputTokens > 0 {
		gcfg.MaxOutputTokens = int32(c.LLM.MaxOutputTokens)
	}
	gemini, err := llm.NewGeminiClient(ctx, gcfg)
	if err != nil {
		return nil, err
	}

	stack := llm.StackOptions{
		MaxConcurrent: c.LLM.MaxConcurrent,
		PerCall:       timeouts.PerCall,
		Model:         gemini.Model(),
	}
	if st != nil {
		stack.Sink = st
	}
	client := llm.Stack(gemini, stack)

	httpClient := &http.Client{}
	searcher := search.New(
		search.NewDuckDuckGo(c.Search.BaseURL, c.Search.UserAgent, httpClient),
		search.Options{
			MaxResults: c.Search.MaxResults,
			Timeout:    timeouts.Search,
			CacheTTL:   c.Search.CacheTTLDuration(),
			CacheSize:  c.Search.CacheSize,
		},
	)
	gatherer := fetchers.FromConfig(c, httpClient, timeouts.Fetch)
	logging.Boot("auxiliary fetchers enabled: %d", gatherer.Len())

	loop := research.New(client, searcher, gatherer, research.Options{
		MaxIterations: c.Research.MaxIterations,
		MinSearches:   c.Research.MinSearches,
	})
	gen := sections.NewGenerator(client)

	var saver pipeline.Store
	if st != nil {
		saver = st
	}

	return &app{
		client:   client,
		analyzer: pipeline.NewAnalyzer(loop, gen, saver, pipeline.Options{Timeout: timeouts.Pipeline}),
		executor: edit.NewExecutor(gen),
		agent:    edit.NewAgent(client),
		timeouts: timeouts,
		model:    gemini.Model(),
	}, nil
}

func (a *app) runtime() *server.Runtime {
	return &server.Runtime{
		Analyzer: a.analyzer,
		Executor: a.executor,
		Agent:    a.agent,
		Timeouts: a.timeouts,
		Model:    a.model,
	}
}

// openStore opens the configured report store, or returns nil when
// persistence is disabled by an empty path.
func openStore(c *config.Config) (*store.SQLiteStore, error) {
	if c.Store.Path == "" {
		logging.Boot("report storage disabled")
		return nil, nil
	}
	st, err := store.Open(c.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}
	return st, nil
}

// requireStore is openStore for commands that cannot work without one.
func requireStore(c *config.Config) (*store.SQLiteStore, error) {
	st, err := openStore(c)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("report storage is disabled (store.path is empty)")
	}
	return st, nil
}
