package mapping

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed access to the mapping rule store.
// The engine never writes rules; they are maintained externally.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActiveRules returns all active mapping rules ordered by id, the
// insertion order used for tie-breaks.
func (r *Repository) ListActiveRules(ctx context.Context) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, source_pattern, pattern_type, target_sku,
		       COALESCE(quantity_multiplier, 0), rule_name, is_active, created_at, updated_at
		FROM mapping_rules
		WHERE is_active
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active mapping rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.ID, &rule.SourcePattern, &rule.PatternType, &rule.TargetSKU,
			&rule.QuantityMultiplier, &rule.RuleName, &rule.IsActive,
			&rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan mapping rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mapping rules: %w", err)
	}
	return rules, nil
}
