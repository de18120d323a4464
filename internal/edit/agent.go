package edit

import (
	"context"
	"strings"

	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// ResponseType tells the client what kind of reply it got.
type ResponseType string

const (
	ResponseAnswer ResponseType = "answer"
	ResponseEdit   ResponseType = "edit"
)

// Request is a follow-up message on a report.
type Request struct {
	Message      string            `json:"message"`
	CurrentData  *types.Report     `json:"currentData"`
	FocusedBlock *FocusedBlock     `json:"focusedBlock,omitempty"`
	Sources      []types.SearchHit `json:"sources,omitempty"`
}

// Response answers a Request. Edit fields are set only for edits.
type Response struct {
	Type             ResponseType        `json:"type"`
	Response         string              `json:"response"`
	EditDescription  string              `json:"editDescription,omitempty"`
	EditInstruction  string              `json:"editInstruction,omitempty"`
	AffectedSections []types.SectionName `json:"affectedSections,omitempty"`
}

// Agent is the front door for follow-up messages. It answers questions and
// plans edits; executing a plan is left to the caller.
type Agent struct {
	classifier *Classifier
	answerer   *Answerer
	planner    *Planner
}

// NewAgent creates an Agent whose steps all use client.
func NewAgent(client types.LLMClient) *Agent {
	return &Agent{
		classifier: NewClassifier(client),
		answerer:   NewAnswerer(client),
		planner:    NewPlanner(client),
	}
}

// Handle classifies req and answers or plans it.
func (a *Agent) Handle(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	report := req.CurrentData
	if report == nil {
		report = &types.Report{}
	}

	cls, err := a.classifier.Classify(ctx, message, report, req.FocusedBlock)
	if err != nil {
		return nil, err
	}

	if cls.Kind == KindQuestion {
		text, err := a.answerer.Answer(ctx, message, report, req.FocusedBlock, req.Sources)
		if err != nil {
			return nil, err
		}
		return &Response{Type: ResponseAnswer, Response: text}, nil
	}

	plan, err := a.planner.Plan(ctx, message, report, req.FocusedBlock)
	if err != nil {
		return nil, err
	}
	if plan.NeedsClarification() {
		logging.EditDebug("edit needs clarification")
		return &Response{Type: ResponseAnswer, Response: plan.Response}, nil
	}
	return &Response{
		Type:             ResponseEdit,
		Response:         plan.Response,
		EditDescription:  plan.EditDescription,
		EditInstruction:  plan.EditInstruction,
		AffectedSections: plan.AffectedSections,
	}, nil
}
