package research

import (
	"fmt"
	"strings"

	"ideaforge/internal/search"
)

const loopSystemPrompt = `You are a startup research analyst validating a business idea.
You have search tools, one per research topic. Call them to gather evidence.
Issue several searches per turn when useful; vary the queries.
When you have enough evidence on every topic, reply with a short plain-text summary and no tool calls.`

func seedPrompt(idea string, minSearches int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Business idea: %q\n\n", idea)
	sb.WriteString("Research these topics:\n")
	for _, t := range search.AllTopics {
		fmt.Fprintf(&sb, "- %s (tool %s): %s\n", t, t.ToolName(), t.Description())
	}
	fmt.Fprintf(&sb, "\nCall at least %d search operations in total before you stop.", minSearches)
	return sb.String()
}

const synthesisSystemPrompt = `You turn raw research into a structured record.
Respond with exactly one JSON object and nothing else, using these keys:
{
  "competitors": [{"name": "", "description": "", "funding": "", "pricing": "", "strengths": [""], "weaknesses": [""]}],
  "marketData": {"size": "", "growthRate": "", "trends": [""], "demographics": ""},
  "complaints": [{"source": "", "content": "", "theme": ""}],
  "caseStudies": [{"name": "", "outcome": "", "details": "", "lesson": ""}],
  "regulatory": [{"area": "", "requirement": "", "impact": ""}]
}
Use only facts present in the research. Leave a list empty rather than inventing entries.`

// synthesisKeys are the top-level keys of the synthesis schema.
var synthesisKeys = []string{"competitors", "marketData", "complaints", "caseStudies", "regulatory"}
