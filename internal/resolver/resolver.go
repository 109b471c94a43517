// Package resolver implements the cross-channel product resolution chain: a
// raw per-channel SKU is matched to a canonical catalog product through an
// ordered sequence of candidate lookups with early exit. Resolution is a pure
// function over the per-rebuild catalog snapshot and rule set; it never
// errors and never drops a line item.
package resolver

import (
	"github.com/solstice-analytics/solstice/internal/catalog"
	"github.com/solstice-analytics/solstice/internal/mapping"
)

// MatchType classifies how a raw SKU was resolved, in priority order.
type MatchType string

const (
	MatchDirect              MatchType = "direct"
	MatchMasterBox           MatchType = "master_box"
	MatchSKUMapping          MatchType = "sku_mapping"
	MatchSKUMappingMasterBox MatchType = "sku_mapping_master_box"
	MatchUnmapped            MatchType = "unmapped"
)

// MasterBoxCategory is the sentinel category emitted for master-box matches,
// whose contents span the primary entry's own category.
const MasterBoxCategory = "master box"

// Resolution is the audit-plus-computation outcome for one raw SKU.
// Multiplier always carries the aggregated bundle value (computation
// projection) while RuleName names only the tie-break winner (audit
// projection).
type Resolution struct {
	RawSKU     string
	CatalogSKU *string
	Category   *string
	MatchType  MatchType
	RuleName   *string
	Multiplier float64
	Warnings   []string

	matchedRules int
}

// Unmapped reports whether no match path succeeded.
func (r Resolution) Unmapped() bool {
	return r.MatchType == MatchUnmapped
}

// Bundle reports whether the SKU resolved through a multi-rule pattern.
func (r Resolution) Bundle() bool {
	return r.matchedRules > 1
}

// Resolver binds the immutable reference snapshots for one rebuild.
type Resolver struct {
	catalog *catalog.Snapshot
	rules   *mapping.RuleSet
}

// New constructs a resolver over the given snapshots.
func New(cat *catalog.Snapshot, rules *mapping.RuleSet) *Resolver {
	return &Resolver{catalog: cat, rules: rules}
}

// Resolve walks the priority chain: direct, master-box, rule to catalog,
// rule to master-box, unmapped. Once a path succeeds no later path is
// consulted.
func (rv *Resolver) Resolve(rawSKU string) Resolution {
	norm := catalog.NormalizeSKU(rawSKU)
	res := Resolution{RawSKU: norm, MatchType: MatchUnmapped, Multiplier: 1}
	if norm == "" {
		return res
	}

	// 1. Direct: raw SKU equals an active canonical SKU.
	if p, ok := rv.catalog.BySKU(norm); ok {
		res.MatchType = MatchDirect
		res.CatalogSKU = strPtr(p.SKU)
		res.Category = p.Category
		return res
	}

	// 2. Master-box: raw SKU equals an active product's sku_master. The
	// resolved SKU is the primary entry; its items_per_master_box supplies
	// the unit-equivalent multiplier.
	if p, ok := rv.catalog.ByMasterSKU(norm); ok {
		res.MatchType = MatchMasterBox
		res.CatalogSKU = strPtr(p.SKU)
		res.Category = strPtr(MasterBoxCategory)
		res.Multiplier = float64(p.ItemsPerMasterBox)
		if p.ItemsPerMasterBox <= 0 {
			res.Multiplier = 1
			res.Warnings = append(res.Warnings, "master box "+norm+" missing items_per_master_box, defaulting to 1")
		}
		return res
	}

	// 3/4. Pattern mapping. The tie-break winner (lowest rule id) supplies
	// the catalog lookup and the audit rule name; the quantity multiplier
	// aggregates every matching rule (§ bundle expansion).
	matched := rv.rules.Match(norm)
	if len(matched) == 0 {
		return res
	}
	display := DisplayRule(matched)
	res.matchedRules = len(matched)
	res.RuleName = strPtr(display.RuleName)

	multiplier, warnings := EffectiveMultiplier(matched)
	res.Multiplier = multiplier
	res.Warnings = append(res.Warnings, warnings...)

	target := catalog.NormalizeSKU(display.TargetSKU)

	// 3. Rule target equals a canonical SKU.
	if p, ok := rv.catalog.BySKU(target); ok {
		res.MatchType = MatchSKUMapping
		res.CatalogSKU = strPtr(p.SKU)
		res.Category = p.Category
		return res
	}

	// 4. Rule target equals a sku_master.
	if p, ok := rv.catalog.ByMasterSKU(target); ok {
		res.MatchType = MatchSKUMappingMasterBox
		res.CatalogSKU = strPtr(p.SKU)
		res.Category = strPtr(MasterBoxCategory)
		return res
	}

	// 5. Rules matched but the winner's target is not in the catalog. The
	// row still flows through as unmapped with the default multiplier; the
	// stale rule surfaces via the audit report.
	res.MatchType = MatchUnmapped
	res.RuleName = nil
	res.Multiplier = 1
	res.Warnings = append(res.Warnings, "mapping rule "+display.RuleName+" targets unknown SKU "+target)
	return res
}

func strPtr(s string) *string {
	return &s
}
