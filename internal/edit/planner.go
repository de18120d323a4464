package edit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge/internal/graph"
	"ideaforge/internal/jsonx"
	"ideaforge/internal/llm"
	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// Plan is a planned edit. A plan with no AffectedSections asks the user to
// clarify and regenerates nothing.
type Plan struct {
	EditDescription  string              `json:"editDescription"`
	EditInstruction  string              `json:"editInstruction"`
	AffectedSections []types.SectionName `json:"affectedSections"`
	Response         string              `json:"response"`

	// Added lists sections the dependency closure added to the engine's choice.
	Added []types.SectionName `json:"-"`
}

// NeedsClarification reports whether nothing will be regenerated.
func (p *Plan) NeedsClarification() bool {
	return len(p.AffectedSections) == 0
}

type rawPlan struct {
	EditDescription  string   `json:"editDescription"`
	EditInstruction  string   `json:"editInstruction"`
	AffectedSections []string `json:"affectedSections"`
	Response         string   `json:"response"`
}

// Planner turns an edit request into a Plan.
type Planner struct {
	llm   types.LLMClient
	graph *graph.Graph
}

// NewPlanner creates a Planner over graph.Default.
func NewPlanner(client types.LLMClient) *Planner {
	return &Planner{llm: client, graph: graph.Default}
}

// Plan asks the engine for a plan and enforces the invalidation closure on
// its section choice. Unparseable output yields a clarification plan.
func (p *Planner) Plan(ctx context.Context, message string, report *types.Report, focus *FocusedBlock) (*Plan, error) {
	in := map[string]any{
		"message": message,
		"report":  report,
	}
	if focus != nil {
		in["focusedBlock"] = focus
	}
	input, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode plan input: %w", err)
	}

	system := fmt.Sprintf(planSystemPrompt, fieldTableText())
	raw, err := p.llm.CompleteJSON(llm.WithLabel(ctx, "edit:plan"), system, string(input))
	if err != nil {
		return nil, fmt.Errorf("plan edit: %w", err)
	}
	rp, err := jsonx.Unwrap[rawPlan](raw, "affectedSections", "editDescription", "editInstruction", "response")
	if err != nil {
		logging.Get(logging.CategoryEdit).Warn("planner output unparseable, asking for clarification: %v", err)
		return &Plan{Response: clarification}, nil
	}
	return p.enforce(rp, message, focus), nil
}

// enforce validates the engine's sections against the graph.
func (p *Planner) enforce(rp rawPlan, message string, focus *FocusedBlock) *Plan {
	plan := &Plan{
		EditDescription: strings.TrimSpace(rp.EditDescription),
		EditInstruction: strings.TrimSpace(rp.EditInstruction),
		Response:        strings.TrimSpace(rp.Response),
	}

	var chosen []types.SectionName
	for _, name := range rp.AffectedSections {
		s, err := types.ParseSectionName(name)
		if err != nil {
			logging.Get(logging.CategoryEdit).Warn("planner named unknown section %q, ignoring", name)
			continue
		}
		chosen = append(chosen, s)
	}
	if len(chosen) == 0 {
		if s, ok := focus.Resolve(); ok {
			logging.EditDebug("planner chose no sections, seeding focused %s", s)
			chosen = []types.SectionName{s}
		}
	}
	if len(chosen) == 0 {
		return &Plan{Response: clarification}
	}
	if plan.EditInstruction == "" {
		plan.EditInstruction = strings.TrimSpace(message)
	}
	if plan.Response == "" {
		plan.Response = "Updating the report."
	}

	closed, added, err := p.graph.Closure(chosen)
	if err != nil {
		// chosen only holds parsed names, so the graph knows all of them.
		logging.Get(logging.CategoryEdit).Error("closure failed: %v", err)
		return &Plan{Response: clarification}
	}
	if len(added) > 0 {
		logging.Edit("planner under-selected sections, added %v", added)
	}
	plan.AffectedSections = closed
	plan.Added = added
	return plan
}
