// Package tools provides the named operations a reasoning engine may invoke
// during a tool-calling dialogue.
//
// Tools are registered in a Registry, exposed to the engine as
// types.ToolDefinition and dispatched by name when the engine calls them:
//
//	Registry.Definitions() → engine → ToolCall → Registry.Execute() → ToolResult
package tools

import (
	"context"
)

// ToolCategory groups tools so a caller can expose a subset.
type ToolCategory string

const (
	// CategoryResearch covers topic searches against the web.
	CategoryResearch ToolCategory = "/research"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines one named operation.
type Tool struct {
	// Name is the unique identifier the engine calls the tool by.
	Name string

	// Description explains what the tool does; it is sent to the engine.
	Description string

	Category ToolCategory

	Execute ExecuteFunc

	Schema ToolSchema

	// Priority orders tools within a category; higher first (default 50).
	Priority int
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// WithPriority returns a copy of the tool with the given priority.
func (t *Tool) WithPriority(priority int) *Tool {
	copy := *t
	copy.Priority = priority
	return &copy
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	ToolName   string
	Result     string
	Error      error
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}

// StringArg returns args[name] as a string. Numbers and booleans are
// formatted; a missing or non-scalar value yields ErrInvalidArgType.
func StringArg(args map[string]any, name string) (string, error) {
	switch v := args[name].(type) {
	case string:
		return v, nil
	case nil:
		return "", fmtArgErr(ErrMissingRequiredArg, name)
	case float64, int, int64, bool:
		return fmtScalar(v), nil
	}
	return "", fmtArgErr(ErrInvalidArgType, name)
}
