package config

import (
	"fmt"
	"time"
)

// TimeoutsConfig holds duration strings as written in YAML.
//
// In Go the SHORTEST timeout in the chain wins: a PerCall of 2m inside a
// Pipeline of 90s fails at 90s.
type TimeoutsConfig struct {
	PerCall  string `yaml:"per_call"`  // one reasoning engine round-trip
	Search   string `yaml:"search"`    // one web search request
	Fetch    string `yaml:"fetch"`     // one auxiliary fetcher
	Pipeline string `yaml:"pipeline"`  // whole analysis run, enforced by the transport
	FollowUp string `yaml:"follow_up"` // agent request including any answer call
	Regen    string `yaml:"regen"`     // one selective regeneration batch
}

// Timeouts are the parsed durations.
type Timeouts struct {
	PerCall  time.Duration
	Search   time.Duration
	Fetch    time.Duration
	Pipeline time.Duration
	FollowUp time.Duration
	Regen    time.Duration
}

// DefaultTimeoutsConfig returns the defaults as YAML strings.
func DefaultTimeoutsConfig() TimeoutsConfig {
	return TimeoutsConfig{
		PerCall:  "90s",
		Search:   "20s",
		Fetch:    "15s",
		Pipeline: "10m",
		FollowUp: "2m",
		Regen:    "6m",
	}
}

// DefaultTimeouts returns the parsed defaults.
func DefaultTimeouts() Timeouts {
	t, _ := DefaultTimeoutsConfig().Parse()
	return t
}

// Parse converts every field, falling back to the default for empty ones.
func (c TimeoutsConfig) Parse() (Timeouts, error) {
	def := DefaultTimeoutsConfig()
	var t Timeouts
	fields := []struct {
		name string
		val  string
		def  string
		dst  *time.Duration
	}{
		{"per_call", c.PerCall, def.PerCall, &t.PerCall},
		{"search", c.Search, def.Search, &t.Search},
		{"fetch", c.Fetch, def.Fetch, &t.Fetch},
		{"pipeline", c.Pipeline, def.Pipeline, &t.Pipeline},
		{"follow_up", c.FollowUp, def.FollowUp, &t.FollowUp},
		{"regen", c.Regen, def.Regen, &t.Regen},
	}
	for _, f := range fields {
		raw := f.val
		if raw == "" {
			raw = f.def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Timeouts{}, fmt.Errorf("invalid timeouts.%s %q: %w", f.name, raw, err)
		}
		if d <= 0 {
			return Timeouts{}, fmt.Errorf("timeouts.%s must be positive, got %s", f.name, raw)
		}
		*f.dst = d
	}
	return t, nil
}

// CacheTTLDuration returns the search cache TTL, defaulting to 30 minutes.
func (c SearchConfig) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}
