package resolver

import (
	"fmt"

	"github.com/solstice-analytics/solstice/internal/mapping"
)

// DisplayRule is the audit projection over a matched rule group: exactly one
// rule, the lowest id, names the mapping on the emitted fact row. Callers
// must pass a non-empty group.
func DisplayRule(rules []mapping.Rule) mapping.Rule {
	winner := rules[0]
	for _, rule := range rules[1:] {
		if rule.ID < winner.ID {
			winner = rule
		}
	}
	return winner
}

// EffectiveMultiplier is the computation projection: a bundle SKU is one sale
// event whose unit-equivalent quantity is the sum of every component rule's
// multiplier, not the display rule's own value. A missing or non-positive
// multiplier counts as 1 and is reported as a data-quality warning.
func EffectiveMultiplier(rules []mapping.Rule) (float64, []string) {
	if len(rules) == 0 {
		return 1, nil
	}
	var sum float64
	var warnings []string
	for _, rule := range rules {
		m := rule.QuantityMultiplier
		if m <= 0 {
			m = 1
			warnings = append(warnings, fmt.Sprintf("mapping rule %d (%s) missing quantity multiplier, defaulting to 1", rule.ID, rule.RuleName))
		}
		sum += m
	}
	return sum, warnings
}
