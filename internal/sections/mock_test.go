package sections

import (
	"context"

	"ideaforge/internal/types"
)

type mockLLMClient struct {
	jsonFunc func(ctx context.Context, system, user string) (string, error)
}

func (m *mockLLMClient) CompleteWithSystem(context.Context, string, string) (string, error) {
	return "ok", nil
}

func (m *mockLLMClient) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	if m.jsonFunc != nil {
		return m.jsonFunc(ctx, system, user)
	}
	return "{}", nil
}

func (m *mockLLMClient) CompleteWithTools(context.Context, string, []types.Message, []types.ToolDefinition) (*types.LLMToolResponse, error) {
	return &types.LLMToolResponse{}, nil
}
