package mapping

import (
	"log/slog"
	"sort"
	"strings"
)

// RuleSet is an immutable per-rebuild index of active exact-match rules,
// keyed by normalized source pattern. Rules for a pattern are ordered by
// ascending id so the first entry is always the tie-break winner.
type RuleSet struct {
	byPattern map[string][]Rule
	skipped   int
}

// BuildRuleSet indexes active rules. Inactive rules and rules with a pattern
// type other than exact are excluded; skipped non-exact rules are counted so
// callers can surface the data-quality signal.
func BuildRuleSet(rules []Rule, logger *slog.Logger) *RuleSet {
	rs := &RuleSet{byPattern: make(map[string][]Rule)}
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if rule.PatternType != PatternExact {
			rs.skipped++
			if logger != nil {
				logger.Warn("skipping mapping rule with unsupported pattern type",
					slog.Int64("rule_id", rule.ID),
					slog.String("pattern_type", string(rule.PatternType)))
			}
			continue
		}
		pattern := normalizePattern(rule.SourcePattern)
		if pattern == "" {
			continue
		}
		rs.byPattern[pattern] = append(rs.byPattern[pattern], rule)
	}
	for pattern := range rs.byPattern {
		group := rs.byPattern[pattern]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}
	return rs
}

// Match returns the active rules whose source pattern equals the normalized
// raw SKU, ordered by ascending rule id.
func (rs *RuleSet) Match(rawSKU string) []Rule {
	if rs == nil {
		return nil
	}
	return rs.byPattern[normalizePattern(rawSKU)]
}

// Len reports how many distinct patterns are indexed.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.byPattern)
}

// Skipped reports how many active rules were dropped for unsupported pattern
// types.
func (rs *RuleSet) Skipped() int {
	if rs == nil {
		return 0
	}
	return rs.skipped
}

func normalizePattern(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
