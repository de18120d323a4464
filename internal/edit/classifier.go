// Package edit handles follow-up messages on a finished report: it decides
// between answering and editing, plans which sections an edit touches, and
// regenerates them in dependency order.
package edit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge/internal/jsonx"
	"ideaforge/internal/llm"
	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Kind is the classification of a follow-up message.
type Kind string

const (
	KindQuestion Kind = "question"
	KindEdit     Kind = "edit"
)

// FocusedBlock is the report block the user had selected, if any.
type FocusedBlock struct {
	Section types.SectionName `json:"section"`
	Label   string            `json:"label,omitempty"`
}

// Resolve returns the section of the block, falling back to the field
// table when only a label is known.
func (f *FocusedBlock) Resolve() (types.SectionName, bool) {
	if f == nil {
		return "", false
	}
	if f.Section.Valid() {
		return f.Section, true
	}
	if s, err := types.ParseSectionName(string(f.Section)); err == nil {
		return s, true
	}
	return SectionForField(f.Label)
}

// Classification is the classifier's verdict.
type Classification struct {
	Kind      Kind   `json:"type"`
	Rationale string `json:"rationale"`
}

// Classifier decides whether a message is a question or an edit.
type Classifier struct {
	llm types.LLMClient
}

// NewClassifier creates a Classifier.
func NewClassifier(client types.LLMClient) *Classifier {
	return &Classifier{llm: client}
}

// Classify classifies message. Unparseable engine output yields a question;
// provider failures are returned.
func (c *Classifier) Classify(ctx context.Context, message string, report *types.Report, focus *FocusedBlock) (Classification, error) {
	in := map[string]any{
		"message":         message,
		"reportSections":  report.Present(),
		"currentHeadline": headline(report),
	}
	if focus != nil {
		in["focusedBlock"] = focus
	}
	input, err := json.Marshal(in)
	if err != nil {
		return Classification{}, fmt.Errorf("encode classification input: %w", err)
	}

	raw, err := c.llm.CompleteJSON(llm.WithLabel(ctx, "edit:classify"), classifySystemPrompt, string(input))
	if err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}
	out, err := jsonx.Unwrap[Classification](raw, "type", "rationale")
	if err != nil {
		logging.Get(logging.CategoryEdit).Warn("classifier output unparseable, treating as question: %v", err)
		return Classification{Kind: KindQuestion, Rationale: "unclassified"}, nil
	}
	switch Kind(strings.ToLower(strings.TrimSpace(string(out.Kind)))) {
	case KindEdit:
		out.Kind = KindEdit
	default:
		out.Kind = KindQuestion
	}
	logging.EditDebug("classified as %s: %s", out.Kind, out.Rationale)
	return out, nil
}

func headline(r *types.Report) string {
	if r == nil || r.Vision == nil {
		return ""
	}
	if r.Vision.Tagline == "" {
		return r.Vision.ProductName
	}
	return r.Vision.ProductName + ": " + r.Vision.Tagline
}
