package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solstice-analytics/solstice/internal/mapping"
)

func TestDisplayRulePicksLowestID(t *testing.T) {
	winner := DisplayRule([]mapping.Rule{
		{ID: 7, RuleName: "seven"},
		{ID: 2, RuleName: "two"},
		{ID: 5, RuleName: "five"},
	})
	assert.Equal(t, int64(2), winner.ID)
	assert.Equal(t, "two", winner.RuleName)
}

func TestEffectiveMultiplierSumsComponents(t *testing.T) {
	sum, warnings := EffectiveMultiplier([]mapping.Rule{
		{ID: 1, QuantityMultiplier: 2},
		{ID: 2, QuantityMultiplier: 1},
		{ID: 3, QuantityMultiplier: 1},
		{ID: 4, QuantityMultiplier: 1},
		{ID: 5, QuantityMultiplier: 1},
		{ID: 6, QuantityMultiplier: 1},
		{ID: 7, QuantityMultiplier: 1},
		{ID: 8, QuantityMultiplier: 1},
	})
	assert.Equal(t, 9.0, sum)
	assert.Empty(t, warnings)
}

func TestEffectiveMultiplierSingleRule(t *testing.T) {
	sum, warnings := EffectiveMultiplier([]mapping.Rule{{ID: 1, QuantityMultiplier: 2.5}})
	assert.Equal(t, 2.5, sum)
	assert.Empty(t, warnings)
}

func TestEffectiveMultiplierDefaultsMissingToOne(t *testing.T) {
	sum, warnings := EffectiveMultiplier([]mapping.Rule{
		{ID: 1, RuleName: "ok", QuantityMultiplier: 2},
		{ID: 2, RuleName: "missing"},
	})
	assert.Equal(t, 3.0, sum)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "missing")
}

func TestEffectiveMultiplierEmpty(t *testing.T) {
	sum, warnings := EffectiveMultiplier(nil)
	assert.Equal(t, 1.0, sum)
	assert.Empty(t, warnings)
}
