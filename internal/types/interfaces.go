package types

import "context"

// LLMClient is the reasoning engine contract. Implementations live in
// internal/llm; tests use function-field mocks.
type LLMClient interface {
	// CompleteWithSystem returns free-form text.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteJSON asks for exactly one JSON object and returns the raw text,
	// which callers parse through jsonx.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// CompleteWithTools runs one turn of a multi-turn dialogue. The history
	// already contains every earlier turn; tools may be empty to forbid calls.
	CompleteWithTools(ctx context.Context, systemPrompt string, history []Message, tools []ToolDefinition) (*LLMToolResponse, error)
}

// Role identifies the author of a dialogue message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// Message is one entry in a tool-calling dialogue.
type Message struct {
	Role        Role         `json:"role"`
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`   // set on model turns
	ToolResults []ToolResult `json:"tool_results,omitempty"` // set on tool turns
}

// ToolDefinition describes a tool that the LLM can invoke.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"` // JSON Schema for parameters
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string                 `json:"id"`    // Unique ID for this tool use
	Name  string                 `json:"name"`  // Tool name to invoke
	Input map[string]interface{} `json:"input"` // Tool arguments

	// Signature is the provider's opaque thought signature; it must be sent
	// back with the call on the next turn.
	Signature []byte `json:"signature,omitempty"`
}

// ToolResult answers one ToolCall.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"` // Matches ToolCall.ID
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

// UsageMetadata captures token usage metrics from the LLM.
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// LLMToolResponse contains both text response and tool calls from the LLM.
type LLMToolResponse struct {
	Text       string        `json:"text"`        // Text response (may be empty if only tool calls)
	ToolCalls  []ToolCall    `json:"tool_calls"`  // Tool invocations requested by LLM
	StopReason string        `json:"stop_reason"` // "end_turn", "tool_use", etc.
	Usage      UsageMetadata `json:"usage"`
}
