package catalog

import "sort"

// Snapshot is an immutable index over active catalog products, built once
// per rebuild and never mutated during resolution. The master-box/primary
// relationship is held as two maps rather than a graph: SKU to entry and
// master SKU to primary entry.
type Snapshot struct {
	bySKU    map[string]*Product
	byMaster map[string]*Product
}

// BuildSnapshot indexes active products. Inactive products are excluded from
// both indexes. When several primaries declare the same master SKU the
// lexicographically smallest primary SKU wins, keeping rebuilds deterministic.
func BuildSnapshot(products []Product) *Snapshot {
	sorted := make([]Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SKU < sorted[j].SKU })

	s := &Snapshot{
		bySKU:    make(map[string]*Product, len(sorted)),
		byMaster: make(map[string]*Product),
	}
	for i := range sorted {
		p := &sorted[i]
		if !p.IsActive {
			continue
		}
		sku := NormalizeSKU(p.SKU)
		if sku == "" {
			continue
		}
		if _, exists := s.bySKU[sku]; !exists {
			s.bySKU[sku] = p
		}
		if p.SKUMaster == nil {
			continue
		}
		master := NormalizeSKU(*p.SKUMaster)
		if master == "" {
			continue
		}
		if _, exists := s.byMaster[master]; !exists {
			s.byMaster[master] = p
		}
	}
	return s
}

// BySKU returns the active product whose canonical SKU equals the normalized
// input.
func (s *Snapshot) BySKU(sku string) (*Product, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.bySKU[NormalizeSKU(sku)]
	return p, ok
}

// ByMasterSKU returns the primary product whose master-box SKU equals the
// normalized input.
func (s *Snapshot) ByMasterSKU(sku string) (*Product, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.byMaster[NormalizeSKU(sku)]
	return p, ok
}

// Len reports how many active products are indexed.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bySKU)
}
