package edit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge/internal/llm"
	"ideaforge/internal/types"
)

// Answerer answers questions from the report and its citations. It never
// modifies the report.
type Answerer struct {
	llm types.LLMClient
}

// NewAnswerer creates an Answerer.
func NewAnswerer(client types.LLMClient) *Answerer {
	return &Answerer{llm: client}
}

type numberedSource struct {
	N       int    `json:"n"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link"`
}

// Answer returns free text, optionally ending with a "Sources:" line.
func (a *Answerer) Answer(ctx context.Context, message string, report *types.Report, focus *FocusedBlock, sources []types.SearchHit) (string, error) {
	numbered := make([]numberedSource, len(sources))
	for i, s := range sources {
		numbered[i] = numberedSource{N: i + 1, Title: s.Title, Snippet: s.Snippet, Link: s.Link}
	}
	in := map[string]any{
		"question": message,
		"report":   report,
		"sources":  numbered,
	}
	if focus != nil {
		in["focusedBlock"] = focus
	}
	input, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode answer input: %w", err)
	}
	text, err := a.llm.CompleteWithSystem(llm.WithLabel(ctx, "edit:answer"), answerSystemPrompt, string(input))
	if err != nil {
		return "", fmt.Errorf("answer: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SplitSources separates a trailing "Sources:" line from an answer.
func SplitSources(answer string) (body, sources string) {
	i := strings.LastIndex(answer, "Sources:")
	if i < 0 || (i > 0 && answer[i-1] != '\n') {
		return answer, ""
	}
	return strings.TrimSpace(answer[:i]), strings.TrimSpace(strings.TrimPrefix(answer[i:], "Sources:"))
}
