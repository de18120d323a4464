// Package search is the research collaborator: topic-scoped web searches
// returning title, snippet and link hits.
package search

import (
	"errors"
	"fmt"
	"strings"
)

// Topic names one of the research areas the engine can search.
type Topic string

const (
	TopicCompetitors Topic = "competitors"
	TopicMarket      Topic = "market"
	TopicComplaints  Topic = "complaints"
	TopicRegulatory  Topic = "regulatory"
	TopicCaseStudies Topic = "case_studies"
)

// AllTopics lists the topics in the order they are offered to the engine.
var AllTopics = []Topic{TopicCompetitors, TopicMarket, TopicComplaints, TopicRegulatory, TopicCaseStudies}

// ErrUnknownTopic is returned for a topic outside AllTopics.
var ErrUnknownTopic = errors.New("unknown search topic")

var topicKeywords = map[Topic]string{
	TopicCompetitors: "competitors alternatives startups pricing funding",
	TopicMarket:      "market size growth rate statistics trends",
	TopicComplaints:  "complaints problems reviews reddit frustrations",
	TopicRegulatory:  "regulations compliance legal requirements licensing",
	TopicCaseStudies: "startup case study success failure lessons learned",
}

var topicDescriptions = map[Topic]string{
	TopicCompetitors: "Search for existing competitors, their pricing, funding, strengths and weaknesses.",
	TopicMarket:      "Search for market size, growth rate, trends and demographics.",
	TopicComplaints:  "Search for user complaints and frustrations with existing solutions.",
	TopicRegulatory:  "Search for regulations, compliance and legal requirements.",
	TopicCaseStudies: "Search for case studies of similar startups that succeeded or failed.",
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	_, ok := topicKeywords[t]
	return ok
}

// ToolName is the tool name the engine calls for t.
func (t Topic) ToolName() string { return "search_" + string(t) }

// Description is the tool description offered to the engine.
func (t Topic) Description() string { return topicDescriptions[t] }

// Augment wraps query with the topic's keywords.
func (t Topic) Augment(query string) string {
	query = strings.TrimSpace(query)
	kw := topicKeywords[t]
	if query == "" {
		return kw
	}
	return query + " " + kw
}

// ParseTopic accepts a topic or its tool name.
func ParseTopic(raw string) (Topic, error) {
	t := Topic(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "search_"))
	if t == "casestudies" || t == "case-studies" {
		t = TopicCaseStudies
	}
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, raw)
	}
	return t, nil
}
