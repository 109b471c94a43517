package mapping

import "time"

// PatternType enumerates how a rule's source pattern is interpreted. The
// source system reserves room for other types but only populates exact
// matches; anything else is skipped with a warning rather than guessed at.
type PatternType string

// PatternExact matches when the source pattern equals the normalized raw SKU.
const PatternExact PatternType = "exact"

// Rule redirects a raw/legacy SKU pattern to a canonical target SKU with a
// quantity multiplier. Several active rules may share one source pattern;
// that is the bundle case, one rule per component. The id is an
// insertion-ordered identity used only as a deterministic tie-break.
type Rule struct {
	ID                 int64       `json:"id" db:"id"`
	SourcePattern      string      `json:"source_pattern" db:"source_pattern"`
	PatternType        PatternType `json:"pattern_type" db:"pattern_type"`
	TargetSKU          string      `json:"target_sku" db:"target_sku"`
	QuantityMultiplier float64     `json:"quantity_multiplier" db:"quantity_multiplier"`
	RuleName           string      `json:"rule_name" db:"rule_name"`
	IsActive           bool        `json:"is_active" db:"is_active"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}
