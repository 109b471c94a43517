package facts

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists and queries the materialized fact set.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var factColumns = []string{
	"order_id", "line_item_id", "original_sku", "product_name", "resolved_sku",
	"category", "match_type", "mapping_rule", "quantity_multiplier",
	"original_quantity", "adjusted_quantity", "revenue",
	"channel", "customer", "order_date", "run_id",
}

// ReplaceAll swaps the published fact set in a single transaction: delete
// then bulk copy. Under MVCC a concurrent reader sees either the fully-old
// or fully-new set, never a mix; a failure before commit leaves the old set
// untouched.
func (r *Repository) ReplaceAll(ctx context.Context, runID string, rows []FactRow) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin fact swap: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM sales_facts`); err != nil {
		return fmt.Errorf("clear fact set: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"sales_facts"}, factColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{
				row.OrderID, row.LineItemID, row.OriginalSKU, row.ProductName, row.ResolvedSKU,
				row.Category, string(row.MatchType), row.MappingRule, row.QuantityMultiplier,
				row.OriginalQuantity, row.AdjustedQuantity, row.Revenue,
				row.Channel, row.Customer, row.OrderDate, runID,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy fact rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fact swap: %w", err)
	}
	return nil
}

func buildFilter(req ListRequest) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if !req.From.IsZero() {
		add("order_date >= ?", req.From)
	}
	if !req.To.IsZero() {
		add("order_date <= ?", req.To)
	}
	if req.Channel != "" {
		add("channel = ?", req.Channel)
	}
	if req.Category != "" {
		add("category = ?", req.Category)
	}
	if req.MatchType != "" {
		add("match_type = ?", req.MatchType)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns a filtered, paginated page of fact rows plus the total count.
func (r *Repository) List(ctx context.Context, req ListRequest) ([]FactRow, int, error) {
	where, args := buildFilter(req)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales_facts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count facts: %w", err)
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	limitArgs := append(args, perPage, (page-1)*perPage)
	query := `SELECT id, ` + strings.Join(factColumns, ", ") + ` FROM sales_facts` + where +
		` ORDER BY order_date DESC, order_id, line_item_id` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)

	rows, err := r.pool.Query(ctx, query, limitArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list facts: %w", err)
	}
	defer rows.Close()

	var facts []FactRow
	for rows.Next() {
		var f FactRow
		if err := rows.Scan(
			&f.ID, &f.OrderID, &f.LineItemID, &f.OriginalSKU, &f.ProductName, &f.ResolvedSKU,
			&f.Category, &f.MatchType, &f.MappingRule, &f.QuantityMultiplier,
			&f.OriginalQuantity, &f.AdjustedQuantity, &f.Revenue,
			&f.Channel, &f.Customer, &f.OrderDate, &f.RunID,
		); err != nil {
			return nil, 0, fmt.Errorf("scan fact row: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate facts: %w", err)
	}
	return facts, total, nil
}

var summaryColumns = map[string]string{
	"category":   "COALESCE(category, '(uncategorized)')",
	"channel":    "channel",
	"match_type": "match_type",
}

// Summary aggregates rows, quantities and revenue by the requested dimension.
func (r *Repository) Summary(ctx context.Context, req SummaryRequest) ([]SummaryRow, error) {
	column, ok := summaryColumns[req.GroupBy]
	if !ok {
		return nil, fmt.Errorf("unsupported group_by %q", req.GroupBy)
	}

	where, args := buildFilter(ListRequest{From: req.From, To: req.To})
	query := `SELECT ` + column + ` AS key, COUNT(*),
		COALESCE(SUM(original_quantity), 0), COALESCE(SUM(adjusted_quantity), 0), COALESCE(SUM(revenue), 0)
		FROM sales_facts` + where + ` GROUP BY 1 ORDER BY 5 DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize facts: %w", err)
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var s SummaryRow
		if err := rows.Scan(&s.Key, &s.Rows, &s.OriginalQuantity, &s.AdjustedQuantity, &s.Revenue); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return out, nil
}

// VerifyCounts returns total rows and distinct (order_id, original_sku)
// pairs, the duplicate-detection audit.
func (r *Repository) VerifyCounts(ctx context.Context) (total, distinct, unmapped int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT (order_id, original_sku)),
		       COUNT(*) FILTER (WHERE match_type = 'unmapped')
		FROM sales_facts`).Scan(&total, &distinct, &unmapped)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("verify fact counts: %w", err)
	}
	return total, distinct, unmapped, nil
}

// SumRevenue totals published fact revenue, the fact side of the
// revenue-conservation audit.
func (r *Repository) SumRevenue(ctx context.Context) (float64, error) {
	var total float64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(revenue), 0) FROM sales_facts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum fact revenue: %w", err)
	}
	return total, nil
}
