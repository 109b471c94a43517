package categorize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-analytics/solstice/internal/catalog"
	"github.com/solstice-analytics/solstice/internal/shared"
)

type mockCatalogRepo struct {
	products map[string]*catalog.Product

	listErr    error
	setCalls   int
	flagCalls  int
	setSKUs    []string
	flaggedSKU []string
}

func newMockCatalogRepo(products ...catalog.Product) *mockCatalogRepo {
	m := &mockCatalogRepo{products: make(map[string]*catalog.Product)}
	for i := range products {
		p := products[i]
		m.products[p.SKU] = &p
	}
	return m
}

func (m *mockCatalogRepo) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockCatalogRepo) ListUncategorized(ctx context.Context) ([]catalog.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []catalog.Product
	for _, p := range m.products {
		if !p.HasCategory() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) SetCategory(ctx context.Context, sku, category string) error {
	p, ok := m.products[sku]
	if !ok || p.HasCategory() {
		return shared.ErrNotFound
	}
	m.setCalls++
	m.setSKUs = append(m.setSKUs, sku)
	p.Category = &category
	p.NeedsReview = false
	return nil
}

func (m *mockCatalogRepo) MarkNeedsReview(ctx context.Context, sku string) error {
	m.flagCalls++
	m.flaggedSKU = append(m.flaggedSKU, sku)
	if p, ok := m.products[sku]; ok {
		p.NeedsReview = true
	}
	return nil
}

func TestRepairAssignsCategories(t *testing.T) {
	repo := newMockCatalogRepo(
		catalog.Product{SKU: "BAKC_U04010", ProductName: "Barrita", Category: strp("BARRAS"), IsActive: true},
		catalog.Product{SKU: "ANU-BAKC_U04010", ProductName: "Barrita anual", IsActive: true},
		catalog.Product{SKU: "NEW_ITEM", ProductName: "Turrón blando", IsActive: true},
		catalog.Product{SKU: "MYSTERY", ProductName: "cosa rara", IsActive: true},
	)
	svc := NewService(repo, []string{"ANU-"}, nil, nil)

	result, err := svc.Repair(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Examined)
	assert.Equal(t, 2, result.Assigned)
	assert.Equal(t, 1, result.NeedsReview)
	assert.Equal(t, 1, result.ByMethod[MethodPrefixStrip])
	assert.Equal(t, 1, result.ByMethod[MethodKeyword])
	assert.Contains(t, repo.flaggedSKU, "MYSTERY")

	got := repo.products["ANU-BAKC_U04010"]
	require.NotNil(t, got.Category)
	assert.Equal(t, "BARRAS", *got.Category)
}

func TestRepairIsIdempotent(t *testing.T) {
	repo := newMockCatalogRepo(
		catalog.Product{SKU: "BAKC_U04010", ProductName: "Barrita", Category: strp("BARRAS"), IsActive: true},
		catalog.Product{SKU: "ANU-BAKC_U04010", ProductName: "Barrita anual", IsActive: true},
	)
	svc := NewService(repo, []string{"ANU-"}, nil, nil)

	first, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Assigned)

	second, err := svc.Repair(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Examined, "second pass must be a no-op")
	assert.Zero(t, second.Assigned)
	assert.Equal(t, 1, repo.setCalls, "already categorized rows are never rewritten")
}

func TestRepairSourceFailure(t *testing.T) {
	repo := newMockCatalogRepo()
	repo.listErr = errors.New("connection refused")
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.Repair(context.Background())
	assert.ErrorIs(t, err, shared.ErrSourceUnavailable)
}
