package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ideaforge/internal/fetchers"
	"ideaforge/internal/search"
	"ideaforge/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_StopsAtIterationCap(t *testing.T) {
	var turns atomic.Int32
	client := &mockLLMClient{
		toolsFunc: func(_ context.Context, _ string, _ []types.Message, _ []types.ToolDefinition) (*types.LLMToolResponse, error) {
			n := turns.Add(1)
			return &types.LLMToolResponse{ToolCalls: []types.ToolCall{
				call(fmt.Sprintf("c%d", n), search.TopicCompetitors, "coffee subscription"),
			}}, nil
		},
	}
	s := &fakeSearcher{perQuery: 1}
	loop := New(client, s, nil, Options{MaxIterations: 4})

	rec, err := loop.Run(context.Background(), "coffee subscription", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, turns.Load())
	assert.Equal(t, 4, s.count())
	assert.Len(t, rec.RawSearchResults, 4)
}

func TestRun_RawResultsAreSumOfHits(t *testing.T) {
	turn := 0
	client := &mockLLMClient{
		toolsFunc: func(_ context.Context, _ string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
			turn++
			switch turn {
			case 1:
				assert.Len(t, tools, len(search.AllTopics))
				return &types.LLMToolResponse{ToolCalls: []types.ToolCall{
					call("a", search.TopicCompetitors, "coffee"),
					call("b", search.TopicMarket, "coffee market"),
					call("c", search.TopicComplaints, "coffee complaints"),
				}}, nil
			case 2:
				last := history[len(history)-1]
				require.Equal(t, types.RoleTool, last.Role)
				require.Len(t, last.ToolResults, 3)
				assert.Equal(t, []string{"a", "b", "c"}, []string{
					last.ToolResults[0].ToolUseID, last.ToolResults[1].ToolUseID, last.ToolResults[2].ToolUseID,
				})
				return &types.LLMToolResponse{ToolCalls: []types.ToolCall{
					call("d", search.TopicRegulatory, "coffee licence"),
					call("e", search.TopicCaseStudies, "coffee startup"),
				}}, nil
			}
			return &types.LLMToolResponse{Text: "enough"}, nil
		},
	}
	s := &fakeSearcher{perQuery: 3}
	aux := &fakeGatherer{result: &fetchers.Result{
		Data: &types.RealMarketData{Trends: &types.TrendSeries{Keyword: "coffee"}},
		Hits: []types.SearchHit{{Title: "Google Trends", Link: "https://trends.google.com"}},
	}}

	var sources []int
	loop := New(client, s, aux, Options{MaxIterations: 10, MinSearches: 5})
	rec, err := loop.Run(context.Background(), "coffee", func(p Progress) {
		sources = append(sources, p.Sources)
	})
	require.NoError(t, err)

	assert.Len(t, rec.RawSearchResults, 5*3+1)
	require.NotNil(t, rec.RealMarketData)
	assert.Equal(t, "coffee", rec.RealMarketData.Trends.Keyword)
	for i := 1; i < len(sources); i++ {
		assert.GreaterOrEqual(t, sources[i], sources[i-1], "source count must never decrease")
	}
	assert.Equal(t, 16, sources[len(sources)-1])
}

func TestRun_ZeroToolCallsEndsLoop(t *testing.T) {
	var turns atomic.Int32
	var synthesized atomic.Bool
	client := &mockLLMClient{
		toolsFunc: func(context.Context, string, []types.Message, []types.ToolDefinition) (*types.LLMToolResponse, error) {
			turns.Add(1)
			return &types.LLMToolResponse{Text: "I know enough"}, nil
		},
		jsonFunc: func(context.Context, string, string) (string, error) {
			synthesized.Store(true)
			return `{"competitors":[],"marketData":{},"complaints":[],"caseStudies":[],"regulatory":[]}`, nil
		},
	}
	s := &fakeSearcher{perQuery: 1}
	_, err := New(client, s, nil, Options{MaxIterations: 10, MinSearches: 5}).Run(context.Background(), "idea", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, turns.Load(), "a turn without tool calls must end the dialogue")
	assert.Equal(t, 0, s.count())
	assert.True(t, synthesized.Load())
}

func TestRun_SearchFailureDoesNotAbort(t *testing.T) {
	turn := 0
	var gotErrResult bool
	client := &mockLLMClient{
		toolsFunc: func(_ context.Context, _ string, history []types.Message, _ []types.ToolDefinition) (*types.LLMToolResponse, error) {
			turn++
			if turn == 1 {
				return &types.LLMToolResponse{ToolCalls: []types.ToolCall{
					call("a", search.TopicCompetitors, "x"),
					call("b", search.TopicMarket, "y"),
					{ID: "c", Name: "search_unknown", Input: map[string]interface{}{"query": "z"}},
					{ID: "d", Name: search.TopicComplaints.ToolName(), Input: map[string]interface{}{}},
				}}, nil
			}
			results := history[len(history)-1].ToolResults
			gotErrResult = results[0].IsError && !results[1].IsError && results[2].IsError && results[3].IsError
			return &types.LLMToolResponse{Text: "done"}, nil
		},
	}
	s := &fakeSearcher{perQuery: 2, fail: map[search.Topic]error{search.TopicCompetitors: errors.New("backend down")}}
	rec, err := New(client, s, nil, Options{MaxIterations: 5}).Run(context.Background(), "idea", nil)
	require.NoError(t, err)
	assert.True(t, gotErrResult)
	assert.Len(t, rec.RawSearchResults, 2)
}

func TestRun_EngineErrorStillSynthesizes(t *testing.T) {
	var synthesized bool
	client := &mockLLMClient{
		toolsFunc: func(context.Context, string, []types.Message, []types.ToolDefinition) (*types.LLMToolResponse, error) {
			return nil, errors.New("quota exceeded")
		},
		jsonFunc: func(context.Context, string, string) (string, error) {
			synthesized = true
			return `{"competitors":[{"name":"Blue Bottle"}],"marketData":{"size":"$40B"}}`, nil
		},
	}
	rec, err := New(client, &fakeSearcher{}, nil, Options{}).Run(context.Background(), "coffee", nil)
	require.NoError(t, err)
	assert.True(t, synthesized)
	require.Len(t, rec.Competitors, 1)
	assert.Equal(t, "Blue Bottle", rec.Competitors[0].Name)
	assert.Equal(t, "$40B", rec.Market.Size)
	assert.Equal(t, "Unknown", rec.Market.GrowthRate)
	assert.NotNil(t, rec.Complaints)
}

func TestRun_SynthesisFallback(t *testing.T) {
	tests := []struct {
		name string
		json func(context.Context, string, string) (string, error)
	}{
		{"provider error", func(context.Context, string, string) (string, error) { return "", errors.New("503") }},
		{"not json", func(context.Context, string, string) (string, error) { return "I cannot help with that", nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockLLMClient{jsonFunc: tt.json}
			rec, err := New(client, &fakeSearcher{}, nil, Options{}).Run(context.Background(), "idea", nil)
			require.NoError(t, err)
			assert.Equal(t, "idea", rec.Idea)
			assert.Empty(t, rec.Competitors)
			assert.NotNil(t, rec.Competitors)
			assert.Equal(t, "Unknown", rec.Market.Size)
		})
	}
}

func TestRun_WrappedSynthesis(t *testing.T) {
	client := &mockLLMClient{
		jsonFunc: func(context.Context, string, string) (string, error) {
			return "```json\n{\"research\":{\"competitors\":[],\"caseStudies\":[{\"name\":\"Juicero\",\"outcome\":\"failed\"}]}}\n```", nil
		},
	}
	rec, err := New(client, &fakeSearcher{}, nil, Options{}).Run(context.Background(), "idea", nil)
	require.NoError(t, err)
	require.Len(t, rec.CaseStudies, 1)
	assert.Equal(t, "Juicero", rec.CaseStudies[0].Name)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &mockLLMClient{
		toolsFunc: func(ctx context.Context, _ string, _ []types.Message, _ []types.ToolDefinition) (*types.LLMToolResponse, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	_, err := New(client, &fakeSearcher{}, nil, Options{}).Run(ctx, "idea", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ClockAndIdea(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	loop := New(&mockLLMClient{}, &fakeSearcher{}, nil, Options{})
	loop.now = func() time.Time { return fixed }
	rec, err := loop.Run(context.Background(), "idea", nil)
	require.NoError(t, err)
	assert.Equal(t, fixed, rec.CreatedAt)
	assert.Nil(t, rec.RealMarketData)
}

func TestFormatHits_Truncates(t *testing.T) {
	hits := make([]types.SearchHit, 200)
	for i := range hits {
		hits[i] = types.SearchHit{Title: strings.Repeat("t", 50), Snippet: strings.Repeat("s", 100), Link: "https://x"}
	}
	out := formatHits(hits)
	assert.LessOrEqual(t, len(out), maxToolResultBytes)
	assert.Equal(t, "[]", formatHits(nil))
}
