package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestBuildSnapshotIndexesActiveOnly(t *testing.T) {
	snap := BuildSnapshot([]Product{
		{SKU: "BABE_U20010", IsActive: true},
		{SKU: "RETIRED_001", IsActive: false},
	})

	_, ok := snap.BySKU("babe_u20010")
	assert.True(t, ok, "lookup must be case-insensitive")
	_, ok = snap.BySKU("RETIRED_001")
	assert.False(t, ok, "inactive products must not be indexed")
	assert.Equal(t, 1, snap.Len())
}

func TestSnapshotMasterLookup(t *testing.T) {
	snap := BuildSnapshot([]Product{
		{SKU: "BABE_U20010", SKUMaster: strp("BABE_C02810"), ItemsPerMasterBox: 28, IsActive: true},
	})

	p, ok := snap.ByMasterSKU("babe_c02810")
	require.True(t, ok)
	assert.Equal(t, "BABE_U20010", p.SKU)
	assert.Equal(t, 28, p.ItemsPerMasterBox)
}

func TestSnapshotMasterCollisionIsDeterministic(t *testing.T) {
	products := []Product{
		{SKU: "ZZZ_PRIMARY", SKUMaster: strp("SHARED_MASTER"), IsActive: true},
		{SKU: "AAA_PRIMARY", SKUMaster: strp("SHARED_MASTER"), IsActive: true},
	}

	for i := 0; i < 10; i++ {
		snap := BuildSnapshot(products)
		p, ok := snap.ByMasterSKU("SHARED_MASTER")
		require.True(t, ok)
		assert.Equal(t, "AAA_PRIMARY", p.SKU, "smallest primary SKU must always win")
	}
}

func TestNormalizeSKU(t *testing.T) {
	assert.Equal(t, "PACKNAVIDAD2", NormalizeSKU("  packnavidad2 "))
	assert.Equal(t, "", NormalizeSKU("   "))
}

func TestHasCategory(t *testing.T) {
	assert.False(t, Product{}.HasCategory())
	assert.False(t, Product{Category: strp("  ")}.HasCategory())
	assert.True(t, Product{Category: strp("BARRAS")}.HasCategory())
}
