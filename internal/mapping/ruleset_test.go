package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRuleSetOrdersByID(t *testing.T) {
	rs := BuildRuleSet([]Rule{
		{ID: 9, SourcePattern: "PACKNAVIDAD2", PatternType: PatternExact, TargetSKU: "B", IsActive: true},
		{ID: 3, SourcePattern: "packnavidad2", PatternType: PatternExact, TargetSKU: "A", IsActive: true},
	}, nil)

	matched := rs.Match("PACKNAVIDAD2")
	require.Len(t, matched, 2)
	assert.Equal(t, int64(3), matched[0].ID, "lowest id first for deterministic tie-breaks")
	assert.Equal(t, int64(9), matched[1].ID)
}

func TestBuildRuleSetSkipsInactiveAndNonExact(t *testing.T) {
	rs := BuildRuleSet([]Rule{
		{ID: 1, SourcePattern: "X", PatternType: PatternExact, IsActive: false},
		{ID: 2, SourcePattern: "Y", PatternType: PatternType("regex"), IsActive: true},
		{ID: 3, SourcePattern: "Z", PatternType: PatternExact, IsActive: true},
	}, nil)

	assert.Empty(t, rs.Match("X"))
	assert.Empty(t, rs.Match("Y"))
	assert.Len(t, rs.Match("Z"), 1)
	assert.Equal(t, 1, rs.Skipped())
	assert.Equal(t, 1, rs.Len())
}

func TestMatchNormalizesRawSKU(t *testing.T) {
	rs := BuildRuleSet([]Rule{
		{ID: 1, SourcePattern: " pack-8 ", PatternType: PatternExact, IsActive: true},
	}, nil)

	assert.Len(t, rs.Match("PACK-8"), 1)
	assert.Empty(t, rs.Match("PACK-9"))
}

func TestNilRuleSet(t *testing.T) {
	var rs *RuleSet
	assert.Empty(t, rs.Match("ANY"))
	assert.Zero(t, rs.Len())
	assert.Zero(t, rs.Skipped())
}
