// Package sections produces the typed payload of each report section with
// one JSON-mode call to the reasoning engine.
package sections

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ideaforge/internal/jsonx"
	"ideaforge/internal/llm"
	"ideaforge/internal/logging"
	"ideaforge/internal/types"
)

// slowSection is the duration above which a section call is logged as slow.
const slowSection = 45 * time.Second

// Generator produces and revises section payloads.
type Generator struct {
	llm types.LLMClient
}

// NewGenerator creates a Generator backed by client.
func NewGenerator(client types.LLMClient) *Generator {
	return &Generator{llm: client}
}

// Generate produces section from the research record. prior holds the
// sections it depends on; it may be nil for independent sections.
func (g *Generator) Generate(ctx context.Context, section types.SectionName, rec *types.ResearchRecord, prior *types.Report) (types.SectionPayload, error) {
	rc, ok := recipes[section]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSection, section)
	}
	if rec == nil {
		return nil, fmt.Errorf("generate %s: research record is required", section)
	}
	if err := requirePresent(section, rc, prior); err != nil {
		return nil, err
	}

	input, err := json.Marshal(generateInput(section, rec, prior))
	if err != nil {
		return nil, fmt.Errorf("generate %s: encode input: %w", section, err)
	}
	return g.call(llm.WithLabel(ctx, "section:"+string(section)), section, rc.system, string(input))
}

// Regenerate revises section of current according to instruction. rec may
// be nil when the research record is unavailable.
func (g *Generator) Regenerate(ctx context.Context, section types.SectionName, current *types.Report, rec *types.ResearchRecord, instruction string) (types.SectionPayload, error) {
	rc, ok := recipes[section]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSection, section)
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, fmt.Errorf("regenerate %s: edit instruction is required", section)
	}
	if err := requirePresent(section, rc, current); err != nil {
		return nil, err
	}

	in := map[string]any{
		"section":         section,
		"editInstruction": instruction,
		"currentSection":  current.Get(section),
		"report":          current,
	}
	if rec != nil {
		in["idea"] = rec.Idea
		in["research"] = researchContext(rec)
	}
	input, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("regenerate %s: encode input: %w", section, err)
	}
	return g.call(llm.WithLabel(ctx, "regenerate:"+string(section)), section, rc.system+"\n"+regenerateRules, string(input))
}

func (g *Generator) call(ctx context.Context, section types.SectionName, system, input string) (types.SectionPayload, error) {
	timer := logging.StartTimer(logging.CategoryPipeline, "section "+string(section))
	defer timer.StopWithThreshold(slowSection)

	raw, err := g.llm.CompleteJSON(ctx, system, input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", section, err)
	}

	payload, err := types.NewPayload(section)
	if err != nil {
		return nil, err
	}
	if err := jsonx.UnwrapInto(raw, payload, recipes[section].keys...); err != nil {
		logging.Get(logging.CategoryPipeline).Warn("section %s returned unusable output: %v", section, err)
		return nil, fmt.Errorf("%s: %w", section, err)
	}
	normalize(payload)
	logging.PipelineDebug("section %s generated", section)
	return payload, nil
}

func requirePresent(section types.SectionName, rc recipe, report *types.Report) error {
	for _, dep := range rc.needs {
		if !report.Has(dep) {
			return fmt.Errorf("%s needs %s: %w", section, dep, types.ErrSectionMissing)
		}
	}
	return nil
}

// generateInput selects the research and report context each section sees.
func generateInput(section types.SectionName, rec *types.ResearchRecord, prior *types.Report) map[string]any {
	in := map[string]any{"idea": rec.Idea}
	switch section {
	case types.SectionVision:
		in["competitors"] = rec.Competitors
		in["complaints"] = rec.Complaints
		in["market"] = rec.Market
	case types.SectionMarket:
		in["market"] = rec.Market
		in["competitors"] = rec.Competitors
		if !rec.RealMarketData.Empty() {
			in["realMarketData"] = rec.RealMarketData
		}
	case types.SectionBattlefield:
		in["competitors"] = rec.Competitors
		in["complaints"] = rec.Complaints
	case types.SectionVerdict:
		in["vision"] = prior.Vision
		in["market"] = prior.Market
		in["battlefield"] = prior.Battlefield
		in["caseStudies"] = rec.CaseStudies
		in["regulatory"] = rec.Regulatory
	case types.SectionAdvisors:
		in["research"] = researchContext(rec)
		in["battlefield"] = prior.Battlefield
		if prior.Vision != nil {
			in["productName"] = prior.Vision.ProductName
		}
		if prior.Verdict != nil {
			in["verdictSummary"] = prior.Verdict.Summary
		}
	}
	return in
}

// researchContext is the research record without raw hits.
func researchContext(rec *types.ResearchRecord) map[string]any {
	out := map[string]any{
		"competitors": rec.Competitors,
		"marketData":  rec.Market,
		"complaints":  rec.Complaints,
		"caseStudies": rec.CaseStudies,
		"regulatory":  rec.Regulatory,
	}
	if !rec.RealMarketData.Empty() {
		out["realMarketData"] = rec.RealMarketData
	}
	return out
}

// normalize clamps values the schema constrains.
func normalize(p types.SectionPayload) {
	switch v := p.(type) {
	case *types.VerdictSection:
		if v.Score < 0 {
			v.Score = 0
		}
		if v.Score > 100 {
			v.Score = 100
		}
		v.Decision = strings.ToLower(strings.TrimSpace(v.Decision))
	case *types.BattlefieldSection:
		for i := range v.Competitors {
			v.Competitors[i].ThreatLevel = strings.ToLower(strings.TrimSpace(v.Competitors[i].ThreatLevel))
		}
	}
}
