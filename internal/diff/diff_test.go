package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/types"
)

func TestSection(t *testing.T) {
	before := &types.Report{Vision: &types.VisionSection{ProductName: "BeanBox", Tagline: "Fresh"}}
	after := &types.Report{Vision: &types.VisionSection{ProductName: "RoastRoute", Tagline: "Fresh"}}

	d, err := Section(types.SectionVision, before, after)
	require.NoError(t, err)
	assert.True(t, d.Changed())
	assert.Equal(t, 1, d.Added)
	assert.Equal(t, 1, d.Removed)
	assert.Contains(t, d.Unified, `-  "productName": "BeanBox",`)
	assert.Contains(t, d.Unified, `+  "productName": "RoastRoute",`)
	assert.Contains(t, d.Unified, "--- vision (before)")
}

func TestSection_Unchanged(t *testing.T) {
	r := &types.Report{Market: &types.MarketSection{TAM: "$1B"}}
	d, err := Section(types.SectionMarket, r, r.Clone())
	require.NoError(t, err)
	assert.False(t, d.Changed())
	assert.Zero(t, d.Added)
}

func TestSection_NewSection(t *testing.T) {
	after := &types.Report{Advisors: &types.AdvisorsSection{Advisors: []types.Advisor{{Name: "Ada"}}}}
	d, err := Section(types.SectionAdvisors, &types.Report{}, after)
	require.NoError(t, err)
	assert.True(t, d.Changed())
	assert.Zero(t, d.Removed)
	assert.Positive(t, d.Added)
}

func TestUpdates_OrderAndSkip(t *testing.T) {
	current := &types.Report{
		Market:  &types.MarketSection{TAM: "$1B"},
		Verdict: &types.VerdictSection{Score: 60},
	}
	updates := map[types.SectionName]types.SectionPayload{
		types.SectionVerdict: &types.VerdictSection{Score: 75},
		types.SectionMarket:  &types.MarketSection{TAM: "$2B"},
		types.SectionVision:  nil,
	}
	got, err := Updates(current, updates)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.SectionMarket, got[0].Section)
	assert.Equal(t, types.SectionVerdict, got[1].Section)
	assert.Equal(t, "$1B", current.Market.TAM, "current must not be modified")
}
