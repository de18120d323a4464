// Package research runs the tool-calling research dialogue that turns an
// idea into a types.ResearchRecord.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ideaforge/internal/fetchers"
	"ideaforge/internal/jsonx"
	"ideaforge/internal/llm"
	"ideaforge/internal/logging"
	"ideaforge/internal/search"
	"ideaforge/internal/tools"
	"ideaforge/internal/types"
)

// DefaultMaxIterations bounds the tool-calling turns of one run.
const DefaultMaxIterations = 12

// Searcher is the research collaborator.
type Searcher interface {
	Search(ctx context.Context, topic search.Topic, query string) ([]types.SearchHit, error)
}

// Gatherer runs the auxiliary fetchers.
type Gatherer interface {
	Gather(ctx context.Context, keyword string) *fetchers.Result
}

// Progress is reported after every completed tool-calling turn.
type Progress struct {
	Iteration int
	Searches  int // search operations executed so far
	Sources   int // accumulated raw hits so far
	Message   string
}

// ProgressFunc receives progress; it may be nil.
type ProgressFunc func(Progress)

// Options bounds the dialogue.
type Options struct {
	MaxIterations int
	MinSearches   int // search floor asked for in the seed prompt
	Parallelism   int // concurrent searches within one turn
}

// Loop is the tool-calling research loop.
type Loop struct {
	llm      types.LLMClient
	searcher Searcher
	aux      Gatherer
	opts     Options
	now      func() time.Time
}

// New creates a Loop. aux may be nil.
func New(client types.LLMClient, searcher Searcher, aux Gatherer, opts Options) *Loop {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.MinSearches < 0 {
		opts.MinSearches = 0
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	return &Loop{llm: client, searcher: searcher, aux: aux, opts: opts, now: time.Now}
}

// accumulator collects raw hits. It only ever appends.
type accumulator struct {
	mu       sync.Mutex
	hits     []types.SearchHit
	searches int
}

func (a *accumulator) add(hits []types.SearchHit) {
	a.mu.Lock()
	a.hits = append(a.hits, hits...)
	a.searches++
	a.mu.Unlock()
}

func (a *accumulator) addAux(hits []types.SearchHit) {
	a.mu.Lock()
	a.hits = append(a.hits, hits...)
	a.mu.Unlock()
}

func (a *accumulator) snapshot() (hits []types.SearchHit, searches int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.SearchHit(nil), a.hits...), a.searches
}

// Run researches idea. It only fails when ctx ends; provider and parse
// failures degrade the record instead.
func (l *Loop) Run(ctx context.Context, idea string, progress ProgressFunc) (*types.ResearchRecord, error) {
	if progress == nil {
		progress = func(Progress) {}
	}
	start := l.now()
	logging.Research("research started: %q", idea)

	auxDone := make(chan *fetchers.Result, 1)
	if l.aux != nil {
		go func() { auxDone <- l.aux.Gather(ctx, fetchers.Keyword(idea, 3)) }()
	} else {
		auxDone <- &fetchers.Result{}
	}

	acc := &accumulator{}
	reg := l.registry(acc)
	defs := reg.Definitions(tools.CategoryResearch)

	history := []types.Message{{Role: types.RoleUser, Text: seedPrompt(idea, l.opts.MinSearches)}}
	loopCtx := llm.WithLabel(ctx, "research")

	iter := 0
	for iter < l.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iter++
		resp, err := l.llm.CompleteWithTools(loopCtx, loopSystemPrompt, history, defs)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Get(logging.CategoryResearch).Warn("research turn %d failed, continuing to synthesis: %v", iter, err)
			break
		}

		if len(resp.ToolCalls) == 0 {
			logging.ResearchDebug("engine finished tool calling after %d turns", iter)
			break
		}

		history = append(history, types.Message{Role: types.RoleModel, Text: resp.Text, ToolCalls: resp.ToolCalls})
		results := l.execute(ctx, reg, resp.ToolCalls)
		history = append(history, types.Message{Role: types.RoleTool, ToolResults: results})

		hits, searches := acc.snapshot()
		progress(Progress{
			Iteration: iter,
			Searches:  searches,
			Sources:   len(hits),
			Message:   describeCalls(resp.ToolCalls),
		})
	}
	if iter >= l.opts.MaxIterations {
		logging.Research("research reached the iteration cap (%d)", l.opts.MaxIterations)
	}

	var aux *fetchers.Result
	select {
	case aux = <-auxDone:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if aux == nil {
		aux = &fetchers.Result{}
	}
	acc.addAux(aux.Hits)

	hits, searches := acc.snapshot()
	progress(Progress{Iteration: iter, Searches: searches, Sources: len(hits), Message: "Synthesizing research"})

	rec := l.synthesize(ctx, idea, hits, aux.Data)
	rec.RawSearchResults = hits
	rec.RealMarketData = aux.Data
	rec.CreatedAt = l.now()

	logging.Research("research finished in %v: %d turns, %d searches, %d sources, %d competitors",
		l.now().Sub(start), iter, searches, len(hits), len(rec.Competitors))
	return rec, nil
}

// registry exposes one search tool per topic. Every tool appends its hits
// to acc.
func (l *Loop) registry(acc *accumulator) *tools.Registry {
	reg := tools.NewRegistry()
	for i, topic := range search.AllTopics {
		reg.MustRegister(&tools.Tool{
			Name:        topic.ToolName(),
			Description: topic.Description(),
			Category:    tools.CategoryResearch,
			Priority:    90 - i,
			Schema: tools.ToolSchema{
				Required: []string{"query"},
				Properties: map[string]tools.Property{
					"query": {Type: "string", Description: "Search terms about the idea for this topic"},
				},
			},
			Execute: func(ctx context.Context, args map[string]any) (string, error) {
				query, err := tools.StringArg(args, "query")
				if err != nil {
					return "", err
				}
				hits, err := l.searcher.Search(ctx, topic, query)
				if err != nil {
					return "", err
				}
				acc.add(hits)
				return formatHits(hits), nil
			},
		})
	}
	return reg
}

// execute runs every call of one turn and returns results in call order.
func (l *Loop) execute(ctx context.Context, reg *tools.Registry, calls []types.ToolCall) []types.ToolResult {
	results := make([]types.ToolResult, len(calls))
	var eg errgroup.Group
	eg.SetLimit(l.opts.Parallelism)
	for i, call := range calls {
		eg.Go(func() error {
			res := types.ToolResult{ToolUseID: call.ID, Name: call.Name}
			out, err := reg.Execute(ctx, call.Name, call.Input)
			if err != nil {
				logging.Get(logging.CategoryResearch).Warn("tool %s failed: %v", call.Name, err)
				res.Content = err.Error()
				res.IsError = true
			} else {
				res.Content = out.Result
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

type synthesis struct {
	Competitors []types.Competitor        `json:"competitors"`
	Market      types.MarketSummary       `json:"marketData"`
	Complaints  []types.UserComplaint     `json:"complaints"`
	CaseStudies []types.CaseStudyFinding  `json:"caseStudies"`
	Regulatory  []types.RegulatoryFinding `json:"regulatory"`
}

// synthesize asks for the structured record. Any failure yields a
// placeholder record.
func (l *Loop) synthesize(ctx context.Context, idea string, hits []types.SearchHit, data *types.RealMarketData) *types.ResearchRecord {
	rec := placeholder(idea)

	input := struct {
		Idea           string                `json:"idea"`
		Sources        []types.SearchHit     `json:"sources"`
		RealMarketData *types.RealMarketData `json:"realMarketData,omitempty"`
	}{idea, hits, data}
	payload, err := json.Marshal(input)
	if err != nil {
		logging.Get(logging.CategoryResearch).Warn("failed to encode synthesis input: %v", err)
		return rec
	}

	raw, err := l.llm.CompleteJSON(llm.WithLabel(ctx, "research:synthesis"), synthesisSystemPrompt, string(payload))
	if err != nil {
		logging.Get(logging.CategoryResearch).Warn("research synthesis failed, using placeholder record: %v", err)
		return rec
	}
	syn, err := jsonx.Unwrap[synthesis](raw, synthesisKeys...)
	if err != nil {
		logging.Get(logging.CategoryResearch).Warn("research synthesis unparseable, using placeholder record: %v", err)
		return rec
	}

	if syn.Competitors != nil {
		rec.Competitors = syn.Competitors
	}
	if syn.Complaints != nil {
		rec.Complaints = syn.Complaints
	}
	if syn.CaseStudies != nil {
		rec.CaseStudies = syn.CaseStudies
	}
	if syn.Regulatory != nil {
		rec.Regulatory = syn.Regulatory
	}
	if syn.Market.Size != "" {
		rec.Market.Size = syn.Market.Size
	}
	if syn.Market.GrowthRate != "" {
		rec.Market.GrowthRate = syn.Market.GrowthRate
	}
	if syn.Market.Trends != nil {
		rec.Market.Trends = syn.Market.Trends
	}
	if syn.Market.Demographics != "" {
		rec.Market.Demographics = syn.Market.Demographics
	}
	return rec
}

// placeholder is the record used when synthesis is unavailable.
func placeholder(idea string) *types.ResearchRecord {
	return &types.ResearchRecord{
		Idea:        idea,
		Competitors: []types.Competitor{},
		Market: types.MarketSummary{
			Size:         "Unknown",
			GrowthRate:   "Unknown",
			Trends:       []string{},
			Demographics: "Unknown",
		},
		Complaints:  []types.UserComplaint{},
		CaseStudies: []types.CaseStudyFinding{},
		Regulatory:  []types.RegulatoryFinding{},
	}
}

const maxToolResultBytes = 6000

// formatHits renders hits as JSON for the engine, truncated to a budget.
func formatHits(hits []types.SearchHit) string {
	if len(hits) == 0 {
		return "[]"
	}
	for n := len(hits); n > 0; n-- {
		data, err := json.Marshal(hits[:n])
		if err != nil {
			return "[]"
		}
		if len(data) <= maxToolResultBytes || n == 1 {
			return string(data)
		}
	}
	return "[]"
}

func describeCalls(calls []types.ToolCall) string {
	parts := make([]string, 0, len(calls))
	for _, c := range calls {
		q, _ := tools.StringArg(c.Input, "query")
		parts = append(parts, fmt.Sprintf("%s %q", strings.TrimPrefix(c.Name, "search_"), q))
	}
	return "Searching " + strings.Join(parts, ", ")
}
