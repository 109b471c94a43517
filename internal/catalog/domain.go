package catalog

import (
	"strings"
	"time"
)

// Product is a canonical catalog entry. The engine treats the catalog as
// read-only reference data maintained by catalog administration; only the
// categorization repair pass writes back a category.
type Product struct {
	SKU               string     `json:"sku" db:"sku"`
	SKUMaster         *string    `json:"sku_master,omitempty" db:"sku_master"`
	ProductName       string     `json:"product_name" db:"product_name"`
	Category          *string    `json:"category,omitempty" db:"category"`
	PackageType       *string    `json:"package_type,omitempty" db:"package_type"`
	Brand             *string    `json:"brand,omitempty" db:"brand"`
	Language          *string    `json:"language,omitempty" db:"language"`
	UnitsPerDisplay   int        `json:"units_per_display" db:"units_per_display"`
	ItemsPerMasterBox int        `json:"items_per_master_box" db:"items_per_master_box"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	NeedsReview       bool       `json:"needs_review" db:"needs_review"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	CategorizedAt     *time.Time `json:"categorized_at,omitempty" db:"categorized_at"`
}

// HasCategory reports whether the product already carries a category.
func (p Product) HasCategory() bool {
	return p.Category != nil && strings.TrimSpace(*p.Category) != ""
}

// NormalizeSKU upper-cases and trims a raw channel SKU so lookups are
// case-insensitive across channels.
func NormalizeSKU(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
