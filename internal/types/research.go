package types

import "time"

// =============================================================================
// RESEARCH RECORD
// =============================================================================

// Competitor is one company or product found competing for the idea's market.
type Competitor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Funding     string   `json:"funding"`
	Pricing     string   `json:"pricing"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// MarketSummary condenses market sizing research.
type MarketSummary struct {
	Size         string   `json:"size"`
	GrowthRate   string   `json:"growthRate"`
	Trends       []string `json:"trends"`
	Demographics string   `json:"demographics"`
}

// UserComplaint is a pain point users voiced about existing solutions.
type UserComplaint struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	Theme   string `json:"theme"`
}

// CaseStudyFinding summarizes a comparable venture and what it teaches.
type CaseStudyFinding struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Details string `json:"details"`
	Lesson  string `json:"lesson"`
}

// RegulatoryFinding records a legal or compliance consideration.
type RegulatoryFinding struct {
	Area        string `json:"area"`
	Requirement string `json:"requirement"`
	Impact      string `json:"impact"`
}

// SearchHit is a single raw search result kept for citation.
type SearchHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// TrendPoint is one sample of a search-interest series.
type TrendPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// TrendSeries is search interest over time for a keyword.
type TrendSeries struct {
	Keyword string       `json:"keyword"`
	Points  []TrendPoint `json:"points"`
}

// JobStats summarizes job postings related to the idea.
type JobStats struct {
	Keyword       string   `json:"keyword"`
	TotalPostings int      `json:"totalPostings"`
	MeanSalary    float64  `json:"meanSalary"`
	SampleTitles  []string `json:"sampleTitles"`
}

// WorkforcePoint is one period of an official workforce series.
type WorkforcePoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// WorkforceStats is an official labor statistics series.
type WorkforceStats struct {
	SeriesID string           `json:"seriesId"`
	Title    string           `json:"title"`
	Points   []WorkforcePoint `json:"points"`
}

// RealMarketData is what the auxiliary fetchers contribute. Any field may be
// nil when its fetcher is disabled or failed.
type RealMarketData struct {
	Trends    *TrendSeries    `json:"trends,omitempty"`
	Jobs      *JobStats       `json:"jobs,omitempty"`
	Workforce *WorkforceStats `json:"workforce,omitempty"`
}

// Empty reports whether no fetcher produced data.
func (d *RealMarketData) Empty() bool {
	return d == nil || (d.Trends == nil && d.Jobs == nil && d.Workforce == nil)
}

// ResearchRecord is the structured synthesis of all research for one idea.
//
// RawSearchResults is strictly additive while research runs: hits are appended
// in the order operations complete and are never filtered there. Use
// Citations for a deduplicated view.
type ResearchRecord struct {
	Idea             string              `json:"idea"`
	Competitors      []Competitor        `json:"competitors"`
	Market           MarketSummary       `json:"marketData"`
	Complaints       []UserComplaint     `json:"complaints"`
	CaseStudies      []CaseStudyFinding  `json:"caseStudies"`
	Regulatory       []RegulatoryFinding `json:"regulatory"`
	RawSearchResults []SearchHit         `json:"rawSearchResults"`
	RealMarketData   *RealMarketData     `json:"realMarketData,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// Citations returns the raw hits deduplicated by link, first occurrence wins.
// Hits without a link are dropped.
func (r *ResearchRecord) Citations() []SearchHit {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.RawSearchResults))
	out := make([]SearchHit, 0, len(r.RawSearchResults))
	for _, hit := range r.RawSearchResults {
		if hit.Link == "" {
			continue
		}
		if _, ok := seen[hit.Link]; ok {
			continue
		}
		seen[hit.Link] = struct{}{}
		out = append(out, hit)
	}
	return out
}
