package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solstice-analytics/solstice/internal/shared"
)

// Repository provides PostgreSQL backed access to the catalog registry.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `sku, sku_master, product_name, category, package_type, brand, language,
	units_per_display, items_per_master_box, is_active, needs_review, created_at, updated_at, categorized_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.SKU, &p.SKUMaster, &p.ProductName, &p.Category, &p.PackageType, &p.Brand, &p.Language,
		&p.UnitsPerDisplay, &p.ItemsPerMasterBox, &p.IsActive, &p.NeedsReview,
		&p.CreatedAt, &p.UpdatedAt, &p.CategorizedAt,
	)
	return p, err
}

// ListProducts returns every catalog product, active and inactive. The
// snapshot builder applies the active filter so inactive entries remain
// visible to the categorization audit.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM catalog_products ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog products: %w", err)
	}
	return products, nil
}

// ListUncategorized returns products lacking a category, ordered by SKU for
// deterministic repair runs. Products already flagged for review are included
// so a later catalog or keyword change can clear the flag.
func (r *Repository) ListUncategorized(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM catalog_products
		WHERE category IS NULL OR btrim(category) = ''
		ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("list uncategorized products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan uncategorized product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uncategorized products: %w", err)
	}
	return products, nil
}

// SetCategory assigns a category found by the fallback engine. Only rows
// still lacking a category are touched, which keeps the repair pass
// idempotent even under concurrent runs.
func (r *Repository) SetCategory(ctx context.Context, sku, category string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE catalog_products
		SET category = $2, needs_review = FALSE, categorized_at = now(), updated_at = now()
		WHERE sku = $1 AND (category IS NULL OR btrim(category) = '')`,
		NormalizeSKU(sku), category)
	if err != nil {
		return fmt.Errorf("set category for %s: %w", sku, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkNeedsReview flags a product no categorization method could place.
func (r *Repository) MarkNeedsReview(ctx context.Context, sku string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE catalog_products
		SET needs_review = TRUE, updated_at = now()
		WHERE sku = $1 AND (category IS NULL OR btrim(category) = '')`,
		NormalizeSKU(sku))
	if err != nil {
		return fmt.Errorf("mark %s for review: %w", sku, err)
	}
	return nil
}
