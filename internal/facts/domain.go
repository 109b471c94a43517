package facts

import (
	"time"

	"github.com/solstice-analytics/solstice/internal/resolver"
)

// FactRow is the engine's sole output entity: exactly one row per
// (order, line item) pair. Revenue is the line subtotal, never rescaled by
// unit conversion; adjusted quantity carries the unit-equivalent volume.
type FactRow struct {
	ID                 int64              `json:"id" db:"id"`
	OrderID            int64              `json:"order_id" db:"order_id"`
	LineItemID         int64              `json:"line_item_id" db:"line_item_id"`
	OriginalSKU        string             `json:"original_sku" db:"original_sku"`
	ProductName        string             `json:"product_name" db:"product_name"`
	ResolvedSKU        *string            `json:"resolved_sku,omitempty" db:"resolved_sku"`
	Category           *string            `json:"category,omitempty" db:"category"`
	MatchType          resolver.MatchType `json:"match_type" db:"match_type"`
	MappingRule        *string            `json:"mapping_rule,omitempty" db:"mapping_rule"`
	QuantityMultiplier float64            `json:"quantity_multiplier" db:"quantity_multiplier"`
	OriginalQuantity   float64            `json:"original_quantity" db:"original_quantity"`
	AdjustedQuantity   float64            `json:"adjusted_quantity" db:"adjusted_quantity"`
	Revenue            float64            `json:"revenue" db:"revenue"`
	Channel            string             `json:"channel" db:"channel"`
	Customer           string             `json:"customer" db:"customer"`
	OrderDate          time.Time          `json:"order_date" db:"order_date"`
	RunID              string             `json:"run_id" db:"run_id"`
}

// ListRequest filters the fact query surface.
type ListRequest struct {
	From      time.Time `json:"from" validate:"omitempty"`
	To        time.Time `json:"to" validate:"omitempty,gtefield=From"`
	Channel   string    `json:"channel" validate:"omitempty,max=100"`
	Category  string    `json:"category" validate:"omitempty,max=100"`
	MatchType string    `json:"match_type" validate:"omitempty,oneof=direct master_box sku_mapping sku_mapping_master_box unmapped"`
	Page      int       `json:"page" validate:"gte=0"`
	PerPage   int       `json:"per_page" validate:"gte=0,lte=500"`
}

// SummaryRequest shapes the aggregation surface.
type SummaryRequest struct {
	GroupBy string    `json:"group_by" validate:"required,oneof=category channel match_type"`
	From    time.Time `json:"from" validate:"omitempty"`
	To      time.Time `json:"to" validate:"omitempty,gtefield=From"`
}

// SummaryRow is one aggregation bucket.
type SummaryRow struct {
	Key              string  `json:"key"`
	Rows             int64   `json:"rows"`
	OriginalQuantity float64 `json:"original_quantity"`
	AdjustedQuantity float64 `json:"adjusted_quantity"`
	Revenue          float64 `json:"revenue"`
}

// RebuildResult summarizes one full rebuild.
type RebuildResult struct {
	RunID        string        `json:"run_id"`
	TotalRows    int           `json:"total_rows"`
	UnmappedRows int           `json:"unmapped_rows"`
	BundleRows   int           `json:"bundle_rows"`
	Warnings     int           `json:"warnings"`
	SkippedRules int           `json:"skipped_rules"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// VerificationReport is the audit surface: the duplicate-detection check and
// the revenue-conservation check over the published fact set.
type VerificationReport struct {
	TotalRows        int64   `json:"total_rows"`
	DistinctPairs    int64   `json:"distinct_pairs"`
	DuplicateFree    bool    `json:"duplicate_free"`
	FactRevenue      float64 `json:"fact_revenue"`
	SourceRevenue    float64 `json:"source_revenue"`
	RevenueConserved bool    `json:"revenue_conserved"`
	UnmappedRows     int64   `json:"unmapped_rows"`
}
