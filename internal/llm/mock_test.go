package llm

import (
	"context"
	"sync"

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

type memorySink struct {
	mu     sync.Mutex
	traces []Trace
}

func (s *memorySink) RecordTrace(_ context.Context, t Trace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traces = append(s.traces, t)
	return nil
}

func (s *memorySink) all() []Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Trace(nil), s.traces...)
}
