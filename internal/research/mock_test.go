package research

import (
	"context"
	"fmt"
	"sync"

	"ideaforge/internal/fetchers"
	"ideaforge/internal/search"
	"ideaforge/internal/types"
)

type mockLLMClient struct {
	completeFunc func(ctx context.Context, system, user string) (string, error)
	jsonFunc     func(ctx context.Context, system, user string) (string, error)
	toolsFunc    func(ctx context.Context, system string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error)
}

func (m *mockLLMClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, system, user)
	}
	return "ok", nil
}

func (m *mockLLMClient) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	if m.jsonFunc != nil {
		return m.jsonFunc(ctx, system, user)
	}
	return "{}", nil
}

func (m *mockLLMClient) CompleteWithTools(ctx context.Context, system string, history []types.Message, tools []types.ToolDefinition) (*types.LLMToolResponse, error) {
	if m.toolsFunc != nil {
		return m.toolsFunc(ctx, system, history, tools)
	}
	return &types.LLMToolResponse{Text: "done"}, nil
}

// fakeSearcher returns perQuery hits per call, named after topic and query.
type fakeSearcher struct {
	mu       sync.Mutex
	perQuery int
	fail     map[search.Topic]error
	calls    []search.Topic
}

func (f *fakeSearcher) Search(_ context.Context, topic search.Topic, query string) ([]types.SearchHit, error) {
	f.mu.Lock()
	f.calls = append(f.calls, topic)
	f.mu.Unlock()
	if err := f.fail[topic]; err != nil {
		return nil, err
	}
	hits := make([]types.SearchHit, f.perQuery)
	for i := range hits {
		hits[i] = types.SearchHit{
			Title: fmt.Sprintf("%s %s %d", topic, query, i),
			Link:  fmt.Sprintf("https://example.com/%s/%d", topic, i),
		}
	}
	return hits, nil
}

func (f *fakeSearcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeGatherer struct {
	result *fetchers.Result
}

func (g *fakeGatherer) Gather(context.Context, string) *fetchers.Result {
	return g.result
}

func call(id string, topic search.Topic, query string) types.ToolCall {
	return types.ToolCall{ID: id, Name: topic.ToolName(), Input: map[string]interface{}{"query": query}}
}
