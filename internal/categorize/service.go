package categorize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/solstice-analytics/solstice/internal/catalog"
	"github.com/solstice-analytics/solstice/internal/shared"
)

// Repository is the catalog access the repair pass needs.
type Repository interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListUncategorized(ctx context.Context) ([]catalog.Product, error)
	SetCategory(ctx context.Context, sku, category string) error
	MarkNeedsReview(ctx context.Context, sku string) error
}

// Result summarizes one repair run.
type Result struct {
	Examined    int            `json:"examined"`
	Assigned    int            `json:"assigned"`
	NeedsReview int            `json:"needs_review"`
	ByMethod    map[Method]int `json:"by_method"`
}

// Service runs the categorization repair pass over the catalog.
type Service struct {
	repo     Repository
	prefixes []string
	keywords []KeywordRule
	logger   *slog.Logger
}

// NewService constructs the repair service. Nil keywords falls back to the
// default keyword table.
func NewService(repo Repository, prefixes []string, keywords []KeywordRule, logger *slog.Logger) *Service {
	if keywords == nil {
		keywords = DefaultKeywords
	}
	return &Service{repo: repo, prefixes: prefixes, keywords: keywords, logger: logger}
}

// Repair categorizes every product lacking a category. Products already
// carrying a category are never touched, so consecutive runs converge after
// the first.
func (s *Service) Repair(ctx context.Context) (Result, error) {
	result := Result{ByMethod: make(map[Method]int)}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	engine := NewEngine(catalog.BuildSnapshot(products), s.prefixes, s.keywords)

	pending, err := s.repo.ListUncategorized(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	for _, p := range pending {
		if p.HasCategory() {
			continue
		}
		result.Examined++

		category, method, ok := engine.Categorize(p.SKU, p.ProductName)
		if !ok {
			result.NeedsReview++
			if err := s.repo.MarkNeedsReview(ctx, p.SKU); err != nil {
				return result, err
			}
			if s.logger != nil {
				s.logger.Warn("product needs manual categorization",
					slog.String("sku", p.SKU),
					slog.String("name", p.ProductName))
			}
			continue
		}

		if err := s.repo.SetCategory(ctx, p.SKU, category); err != nil {
			// Another pass won the race; the row is categorized either way.
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return result, err
		}
		result.Assigned++
		result.ByMethod[method]++
		if s.logger != nil {
			s.logger.Info("assigned category",
				slog.String("sku", p.SKU),
				slog.String("category", category),
				slog.String("method", string(method)))
		}
	}

	return result, nil
}
