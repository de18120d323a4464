package llm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"ideaforge/internal/types"
)

// toContents converts a provider-neutral dialogue into genai contents.
// Tool turns are sent with the user role, which is what the Gemini API
// expects for function responses.
func toContents(history []types.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case types.RoleModel:
			parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
			if msg.Text != "" {
				parts = append(parts, genai.NewPartFromText(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				p := genai.NewPartFromFunctionCall(call.Name, call.Input)
				p.FunctionCall.ID = call.ID
				p.ThoughtSignature = call.Signature
				parts = append(parts, p)
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))

		case types.RoleTool:
			parts := make([]*genai.Part, 0, len(msg.ToolResults))
			for _, res := range msg.ToolResults {
				payload := map[string]any{"output": res.Content}
				if res.IsError {
					payload = map[string]any{"error": res.Content}
				}
				p := genai.NewPartFromFunctionResponse(res.Name, payload)
				p.FunctionResponse.ID = res.ToolUseID
				parts = append(parts, p)
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

		default:
			contents = append(contents, genai.NewContentFromText(msg.Text, genai.RoleUser))
		}
	}
	return contents
}

// toTools converts tool definitions into a single genai tool holding all
// function declarations.
func toTools(defs []types.ToolDefinition) ([]*genai.Tool, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		schema, err := toSchema(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Name, err)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  schema,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}, nil
}

// toSchema converts a JSON Schema map into a genai schema. Only the subset the
// tool registry produces is supported: type, description, enum, properties,
// required and items.
func toSchema(raw map[string]interface{}) (*genai.Schema, error) {
	if raw == nil {
		return nil, nil
	}
	s := &genai.Schema{}
	if t, ok := raw["type"].(string); ok {
		typ, err := schemaType(t)
		if err != nil {
			return nil, err
		}
		s.Type = typ
	}
	if d, ok := raw["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := raw["enum"]; ok {
		s.Enum = toStrings(enum)
	}
	if req, ok := raw["required"]; ok {
		s.Required = toStrings(req)
	}
	if props, ok := raw["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child, ok := props[name].(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("property %s is not an object", name)
			}
			cs, err := toSchema(child)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			s.Properties[name] = cs
		}
	}
	if items, ok := raw["items"].(map[string]interface{}); ok {
		is, err := toSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.Items = is
	}
	return s, nil
}

func schemaType(t string) (genai.Type, error) {
	switch t {
	case "object":
		return genai.TypeObject, nil
	case "string":
		return genai.TypeString, nil
	case "integer":
		return genai.TypeInteger, nil
	case "number":
		return genai.TypeNumber, nil
	case "boolean":
		return genai.TypeBoolean, nil
	case "array":
		return genai.TypeArray, nil
	}
	return "", fmt.Errorf("unsupported schema type %q", t)
}

func toStrings(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return append([]string(nil), vals...)
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, x := range vals {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// fromResponse extracts text, tool calls and usage from a genai response.
func fromResponse(resp *genai.GenerateContentResponse) *types.LLMToolResponse {
	out := &types.LLMToolResponse{StopReason: "end_turn"}
	if resp == nil {
		return out
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for i, part := range resp.Candidates[0].Content.Parts {
			if part == nil || part.FunctionCall == nil {
				continue
			}
			fc := part.FunctionCall
			id := fc.ID
			if id == "" {
				id = fmt.Sprintf("call_%d_%s", i, fc.Name)
			}
			out.ToolCalls = append(out.ToolCalls, types.ToolCall{
				ID:        id,
				Name:      fc.Name,
				Input:     fc.Args,
				Signature: part.ThoughtSignature,
			})
		}
	}
	out.Text = candidateText(resp)
	if len(out.ToolCalls) > 0 {
		out.StopReason = "tool_use"
	} else if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		out.StopReason = string(resp.Candidates[0].FinishReason)
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = types.UsageMetadata{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return out
}

// candidateText joins the non-thought text parts of the first candidate.
// resp.Text() is avoided because it logs to the standard logger whenever
// function-call parts are present.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// argsJSON renders tool arguments for logs.
func argsJSON(args map[string]interface{}) string {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(data)
}
