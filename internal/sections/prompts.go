package sections

import "ideaforge/internal/types"

const jsonRules = `
Respond with exactly one JSON object and nothing else. Do not wrap it in another key.
Ground every claim in the provided input; say "Unknown" rather than inventing figures.`

// recipe describes how one section is produced.
type recipe struct {
	system string
	keys   []string // defining key first
	needs  []types.SectionName // report sections that must be present
}

var recipes = map[types.SectionName]recipe{
	types.SectionVision: {
		system: `You are a product strategist. Frame the product for the business idea.
Schema:
{"productName": "", "tagline": "", "problemStatement": "", "targetAudience": "", "valueProposition": "", "keyFeatures": [""]}` + jsonRules,
		keys: []string{"productName", "tagline", "problemStatement", "targetAudience", "valueProposition", "keyFeatures"},
	},
	types.SectionMarket: {
		system: `You are a market analyst. Size the opportunity using the research and any real market data.
Schema:
{"tam": "", "sam": "", "som": "", "growthRate": "", "trends": [""], "segments": [{"name": "", "size": "", "description": ""}], "demographics": ""}` + jsonRules,
		keys: []string{"tam", "sam", "som", "growthRate", "trends", "segments", "demographics"},
	},
	types.SectionBattlefield: {
		system: `You are a competitive intelligence analyst. Describe the competitive landscape.
threatLevel is one of "low", "medium", "high".
Schema:
{"competitors": [{"name": "", "description": "", "pricing": "", "funding": "", "strengths": [""], "weaknesses": [""], "threatLevel": ""}], "marketGaps": [""], "differentiators": [""], "complaints": [{"theme": "", "frequency": "", "quote": "", "source": ""}]}` + jsonRules,
		keys: []string{"competitors", "marketGaps", "differentiators", "complaints"},
	},
	types.SectionVerdict: {
		system: `You are a venture partner giving a final verdict on the idea, based on the vision, market and battlefield analysis.
score is an integer from 0 to 100. decision is one of "go", "pivot", "no-go".
Schema:
{"score": 0, "decision": "", "summary": "", "strengths": [""], "risks": [{"title": "", "severity": "", "mitigation": ""}], "nextSteps": [""], "caseStudyLessons": [""]}` + jsonRules,
		keys:  []string{"score", "decision", "summary", "strengths", "risks", "nextSteps", "caseStudyLessons"},
		needs: []types.SectionName{types.SectionVision, types.SectionMarket, types.SectionBattlefield},
	},
	types.SectionAdvisors: {
		system: `You assemble an advisory board of four simulated experts for this product.
Each advisor reviews the product by name, from their own perspective, with the competitive landscape in mind.
Schema:
{"advisors": [{"name": "", "role": "", "persona": "", "perspective": "", "advice": "", "concerns": [""]}]}` + jsonRules,
		keys:  []string{"advisors"},
		needs: []types.SectionName{types.SectionBattlefield},
	},
}

const regenerateRules = `
You are revising one section of an existing report.
Apply the edit instruction to the current section. Keep everything the instruction does not touch.
Keep the section consistent with the other sections of the report, which may already have been revised.`
