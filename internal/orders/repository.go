package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides read-only access to the landed order/line-item feed.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListIncludedLines returns every line item whose order satisfies the
/// inclusion predicate: invoice status in the accepted set and order status
// not cancelled. Ordered by (order_id, line id) so rebuilds are
// deterministic.
func (r *Repository) ListIncludedLines(ctx context.Context, invoiceStatuses []string) ([]SourceLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT li.id, li.order_id, li.product_sku, li.product_name,
		       li.quantity, li.unit_price, li.subtotal, li.total, li.tax_amount,
		       o.channel, o.customer, o.order_date, o.invoice_status, o.status
		FROM order_line_items li
		JOIN orders o ON o.id = li.order_id
		WHERE o.invoice_status = ANY($1) AND o.status <> $2
		ORDER BY li.order_id, li.id`,
		invoiceStatuses, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list included line items: %w", err)
	}
	defer rows.Close()

	var lines []SourceLine
	for rows.Next() {
		var l SourceLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.ProductSKU, &l.ProductName,
			&l.Quantity, &l.UnitPrice, &l.Subtotal, &l.Total, &l.TaxAmount,
			&l.Channel, &l.Customer, &l.OrderDate, &l.InvoiceStatus, &l.OrderStatus,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate line items: %w", err)
	}
	return lines, nil
}

// SumIncludedRevenue totals line subtotals under the same inclusion
// predicate, the source side of the revenue-conservation check.
func (r *Repository) SumIncludedRevenue(ctx context.Context, invoiceStatuses []string) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(li.subtotal), 0)
		FROM order_line_items li
		JOIN orders o ON o.id = li.order_id
		WHERE o.invoice_status = ANY($1) AND o.status <> $2`,
		invoiceStatuses, StatusCancelled).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum included revenue: %w", err)
	}
	return total, nil
}
