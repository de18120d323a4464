package types

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// SECTION PAYLOADS
// =============================================================================

// SectionPayload is implemented by every typed section body.
type SectionPayload interface {
	Section() SectionName
}

// VisionSection frames the product itself.
type VisionSection struct {
	ProductName      string   `json:"productName"`
	Tagline          string   `json:"tagline"`
	ProblemStatement string   `json:"problemStatement"`
	TargetAudience   string   `json:"targetAudience"`
	ValueProposition string   `json:"valueProposition"`
	KeyFeatures      []string `json:"keyFeatures"`
}

// MarketSegment is one addressable slice of the market.
type MarketSegment struct {
	Name        string `json:"name"`
	Size        string `json:"size"`
	Description string `json:"description"`
}

// MarketSection sizes the opportunity.
type MarketSection struct {
	TAM          string          `json:"tam"`
	SAM          string          `json:"sam"`
	SOM          string          `json:"som"`
	GrowthRate   string          `json:"growthRate"`
	Trends       []string        `json:"trends"`
	Segments     []MarketSegment `json:"segments"`
	Demographics string          `json:"demographics"`
}

// CompetitorProfile is a competitor as presented in the report.
type CompetitorProfile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Pricing     string   `json:"pricing"`
	Funding     string   `json:"funding"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	ThreatLevel string   `json:"threatLevel"`
}

// ComplaintTheme groups user complaints under a theme.
type ComplaintTheme struct {
	Theme     string `json:"theme"`
	Frequency string `json:"frequency"`
	Quote     string `json:"quote"`
	Source    string `json:"source"`
}

// BattlefieldSection describes the competitive landscape.
type BattlefieldSection struct {
	Competitors     []CompetitorProfile `json:"competitors"`
	MarketGaps      []string            `json:"marketGaps"`
	Differentiators []string            `json:"differentiators"`
	Complaints      []ComplaintTheme    `json:"complaints"`
}

// Risk is a scored threat to the venture.
type Risk struct {
	Title      string `json:"title"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
}

// VerdictSection is the overall assessment derived from the other sections.
type VerdictSection struct {
	Score            int      `json:"score"`
	Decision         string   `json:"decision"`
	Summary          string   `json:"summary"`
	Strengths        []string `json:"strengths"`
	Risks            []Risk   `json:"risks"`
	NextSteps        []string `json:"nextSteps"`
	CaseStudyLessons []string `json:"caseStudyLessons"`
}

// Advisor is a simulated expert persona reviewing the product.
type Advisor struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Persona     string   `json:"persona"`
	Perspective string   `json:"perspective"`
	Advice      string   `json:"advice"`
	Concerns    []string `json:"concerns"`
}

// AdvisorsSection is the advisory board.
type AdvisorsSection struct {
	Advisors []Advisor `json:"advisors"`
}

func (*VisionSection) Section() SectionName      { return SectionVision }
func (*MarketSection) Section() SectionName      { return SectionMarket }
func (*BattlefieldSection) Section() SectionName { return SectionBattlefield }
func (*VerdictSection) Section() SectionName     { return SectionVerdict }
func (*AdvisorsSection) Section() SectionName    { return SectionAdvisors }

// NewPayload returns an empty payload of the type belonging to section.
func NewPayload(section SectionName) (SectionPayload, error) {
	switch section {
	case SectionVision:
		return &VisionSection{}, nil
	case SectionMarket:
		return &MarketSection{}, nil
	case SectionBattlefield:
		return &BattlefieldSection{}, nil
	case SectionVerdict:
		return &VerdictSection{}, nil
	case SectionAdvisors:
		return &AdvisorsSection{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

// DecodePayload decodes raw JSON into the payload type for section.
func DecodePayload(section SectionName, raw []byte) (SectionPayload, error) {
	p, err := NewPayload(section)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", section, err)
	}
	return p, nil
}

// =============================================================================
// REPORT
// =============================================================================

// Report is a possibly partial validation report. A nil field means the
// section has not been produced yet. Sections are only ever replaced as a
// whole; payloads are treated as immutable once stored.
type Report struct {
	Vision      *VisionSection      `json:"vision,omitempty"`
	Market      *MarketSection      `json:"market,omitempty"`
	Battlefield *BattlefieldSection `json:"battlefield,omitempty"`
	Verdict     *VerdictSection     `json:"verdict,omitempty"`
	Advisors    *AdvisorsSection    `json:"advisors,omitempty"`
}

// Get returns the payload stored for section, or nil.
func (r *Report) Get(section SectionName) SectionPayload {
	if r == nil {
		return nil
	}
	switch section {
	case SectionVision:
		if r.Vision != nil {
			return r.Vision
		}
	case SectionMarket:
		if r.Market != nil {
			return r.Market
		}
	case SectionBattlefield:
		if r.Battlefield != nil {
			return r.Battlefield
		}
	case SectionVerdict:
		if r.Verdict != nil {
			return r.Verdict
		}
	case SectionAdvisors:
		if r.Advisors != nil {
			return r.Advisors
		}
	}
	return nil
}

// Has reports whether section is populated.
func (r *Report) Has(section SectionName) bool {
	return r.Get(section) != nil
}

// Set stores p under its own section, replacing any previous payload.
func (r *Report) Set(p SectionPayload) error {
	switch v := p.(type) {
	case *VisionSection:
		r.Vision = v
	case *MarketSection:
		r.Market = v
	case *BattlefieldSection:
		r.Battlefield = v
	case *VerdictSection:
		r.Verdict = v
	case *AdvisorsSection:
		r.Advisors = v
	default:
		return fmt.Errorf("unsupported section payload %T", p)
	}
	return nil
}

// Present lists populated sections in declaration order.
func (r *Report) Present() []SectionName {
	var out []SectionName
	for _, s := range AllSections {
		if r.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Complete reports whether every section is populated.
func (r *Report) Complete() bool {
	return len(r.Present()) == len(AllSections)
}

// Clone returns a copy whose section slots can be replaced without touching r.
func (r *Report) Clone() *Report {
	if r == nil {
		return &Report{}
	}
	c := *r
	return &c
}

// Merge writes every payload of updates into r.
func (r *Report) Merge(updates map[SectionName]SectionPayload) error {
	for section, p := range updates {
		if p == nil {
			continue
		}
		if p.Section() != section {
			return fmt.Errorf("payload for %s stored under %s", p.Section(), section)
		}
		if err := r.Set(p); err != nil {
			return err
		}
	}
	return nil
}
