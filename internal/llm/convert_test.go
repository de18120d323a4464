package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"ideaforge/internal/types"
)

func TestToContents(t *testing.T) {
	history := []types.Message{
		{Role: types.RoleUser, Text: "research coffee boxes"},
		{Role: types.RoleModel, ToolCalls: []types.ToolCall{
			{ID: "c1", Name: "search_competitors", Input: map[string]interface{}{"query": "coffee"}, Signature: []byte("sig")},
		}},
		{Role: types.RoleTool, ToolResults: []types.ToolResult{
			{ToolUseID: "c1", Name: "search_competitors", Content: "[...]"},
			{ToolUseID: "c2", Name: "search_market", Content: "down", IsError: true},
		}},
		{Role: types.RoleModel},
	}

	got := toContents(history)
	require.Len(t, got, 3, "empty model turns are dropped")

	assert.Equal(t, genai.RoleUser, got[0].Role)
	assert.Equal(t, "research coffee boxes", got[0].Parts[0].Text)

	assert.Equal(t, genai.RoleModel, got[1].Role)
	fc := got[1].Parts[0].FunctionCall
	require.NotNil(t, fc)
	assert.Equal(t, "c1", fc.ID)
	assert.Equal(t, "search_competitors", fc.Name)
	assert.Equal(t, []byte("sig"), got[1].Parts[0].ThoughtSignature)

	assert.Equal(t, genai.RoleUser, got[2].Role)
	require.Len(t, got[2].Parts, 2)
	assert.Equal(t, "c1", got[2].Parts[0].FunctionResponse.ID)
	assert.Equal(t, map[string]any{"output": "[...]"}, got[2].Parts[0].FunctionResponse.Response)
	assert.Equal(t, map[string]any{"error": "down"}, got[2].Parts[1].FunctionResponse.Response)
}

func TestToTools(t *testing.T) {
	tools, err := toTools([]types.ToolDefinition{{
		Name:        "search_market",
		Description: "market data",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string", "description": "terms"},
				"tags":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			},
			"required": []string{"query"},
		},
	}})
	require.NoError(t, err)
	require.Len(t, tools, 1)
	decl := tools[0].FunctionDeclarations[0]
	assert.Equal(t, "search_market", decl.Name)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Equal(t, []string{"query"}, decl.Parameters.Required)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["query"].Type)
	assert.Equal(t, genai.TypeString, decl.Parameters.Properties["tags"].Items.Type)

	_, err = toTools([]types.ToolDefinition{{Name: "x", InputSchema: map[string]interface{}{"type": "tuple"}}})
	assert.Error(t, err)

	none, err := toTools(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "Let me search."},
				{FunctionCall: &genai.FunctionCall{Name: "search_complaints", Args: map[string]any{"query": "coffee"}}},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 5, TotalTokenCount: 15},
	}
	out := fromResponse(resp)
	assert.Equal(t, "Let me search.", out.Text)
	assert.Equal(t, "tool_use", out.StopReason)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "search_complaints", out.ToolCalls[0].Name)
	assert.NotEmpty(t, out.ToolCalls[0].ID, "missing IDs are synthesized")
	assert.Equal(t, 15, out.Usage.TotalTokens)

	assert.Empty(t, fromResponse(nil).ToolCalls)
}
