package edit

import (
	"context"
	"fmt"
	"sync"

	"ideaforge/internal/llm"
	"ideaforge/internal/types"
)

type mockLLMClient struct {
	completeFunc func(ctx context.Context, system, user string) (string, error)
	jsonFunc     func(ctx context.Context, system, user string) (string, error)

	mu     sync.Mutex
	labels []string
}

func (m *mockLLMClient) record(ctx context.Context) {
	m.mu.Lock()
	m.labels = append(m.labels, llm.LabelFrom(ctx))
	m.mu.Unlock()
}

func (m *mockLLMClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	m.record(ctx)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, system, user)
	}
	return "ok", nil
}

func (m *mockLLMClient) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	m.record(ctx)
	if m.jsonFunc != nil {
		return m.jsonFunc(ctx, system, user)
	}
	return "{}", nil
}

func (m *mockLLMClient) CompleteWithTools(context.Context, string, []types.Message, []types.ToolDefinition) (*types.LLMToolResponse, error) {
	return nil, fmt.Errorf("tools not expected")
}

// byLabel answers JSON calls from a table keyed by call label.
func byLabel(answers map[string]string) func(ctx context.Context, system, user string) (string, error) {
	return func(ctx context.Context, _, _ string) (string, error) {
		raw, ok := answers[llm.LabelFrom(ctx)]
		if !ok {
			return "", fmt.Errorf("unexpected call %q", llm.LabelFrom(ctx))
		}
		return raw, nil
	}
}

// scriptedRegenerator records calls and returns payloads derived from the
// working copy it was given.
type scriptedRegenerator struct {
	calls   []types.SectionName
	seen    []*types.Report
	failAt  types.SectionName
	failErr error
}

func (r *scriptedRegenerator) Regenerate(_ context.Context, section types.SectionName, current *types.Report, _ *types.ResearchRecord, instruction string) (types.SectionPayload, error) {
	r.calls = append(r.calls, section)
	r.seen = append(r.seen, current)
	if section == r.failAt {
		return nil, r.failErr
	}
	switch section {
	case types.SectionVision:
		return &types.VisionSection{ProductName: instruction}, nil
	case types.SectionMarket:
		return &types.MarketSection{TAM: instruction}, nil
	case types.SectionBattlefield:
		return &types.BattlefieldSection{MarketGaps: []string{instruction}}, nil
	case types.SectionVerdict:
		name := ""
		if current.Vision != nil {
			name = current.Vision.ProductName
		}
		tam := ""
		if current.Market != nil {
			tam = current.Market.TAM
		}
		return &types.VerdictSection{Summary: name + "|" + tam}, nil
	case types.SectionAdvisors:
		return &types.AdvisorsSection{Advisors: []types.Advisor{{Name: current.Verdict.Summary}}}, nil
	}
	return nil, fmt.Errorf("unknown %s", section)
}
