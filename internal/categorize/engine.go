// Package categorize assigns categories to catalog entries lacking one so
// downstream analytics stay free of uncategorized blind spots. The engine is
// a repair pass: re-running it over already-categorized products is a no-op,
// and products no method can place are flagged for manual review rather than
// guessed.
package categorize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/solstice-analytics/solstice/internal/catalog"
)

// Method records which fallback step produced a category.
type Method string

const (
	MethodDirectSKU   Method = "direct_sku"
	MethodPrefixStrip Method = "prefix_strip"
	MethodKeyword     Method = "keyword"
)

// KeywordRule maps a display-name keyword to a category. Declaration order
// matters: the first matching keyword wins.
type KeywordRule struct {
	Keyword  string
	Category string
}

// Engine resolves categories through exact SKU lookup, legacy-prefix
// stripping, then keyword scan, in that order.
type Engine struct {
	catalog  *catalog.Snapshot
	prefixes []string
	keywords []KeywordRule
}

// NewEngine constructs an engine over a catalog snapshot. prefixes lists the
// legacy SKU prefixes to strip on the second attempt; keywords is scanned in
// declaration order.
func NewEngine(cat *catalog.Snapshot, prefixes []string, keywords []KeywordRule) *Engine {
	return &Engine{catalog: cat, prefixes: prefixes, keywords: keywords}
}

// Categorize returns the category for a product identified by raw SKU and
// display name, plus the method that found it. ok is false when every method
// came up empty and the product should be flagged for review.
func (e *Engine) Categorize(rawSKU, displayName string) (category string, method Method, ok bool) {
	normSKU := catalog.NormalizeSKU(rawSKU)

	// (a) exact SKU match against the registry.
	if cat, found := e.lookupCategory(normSKU); found {
		return cat, MethodDirectSKU, true
	}

	// (b) strip a known legacy prefix and retry.
	for _, prefix := range e.prefixes {
		p := catalog.NormalizeSKU(prefix)
		if p == "" || !strings.HasPrefix(normSKU, p) {
			continue
		}
		if cat, found := e.lookupCategory(strings.TrimPrefix(normSKU, p)); found {
			return cat, MethodPrefixStrip, true
		}
	}

	// (c) keyword scan over the display name, first declared keyword wins.
	folded := foldText(displayName)
	for _, kw := range e.keywords {
		needle := foldText(kw.Keyword)
		if needle == "" {
			continue
		}
		if strings.Contains(folded, needle) {
			return kw.Category, MethodKeyword, true
		}
	}

	return "", "", false
}

func (e *Engine) lookupCategory(sku string) (string, bool) {
	p, found := e.catalog.BySKU(sku)
	if !found || !p.HasCategory() {
		return "", false
	}
	return *p.Category, true
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText upper-cases and strips diacritics so keyword matching works across
// accented product names (e.g. "TURRÓN" matches keyword "turron").
func foldText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(folded)
}
