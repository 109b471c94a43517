package facts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/solstice-analytics/solstice/internal/catalog"
	"github.com/solstice-analytics/solstice/internal/mapping"
	"github.com/solstice-analytics/solstice/internal/observability"
	"github.com/solstice-analytics/solstice/internal/orders"
	"github.com/solstice-analytics/solstice/internal/resolver"
	"github.com/solstice-analytics/solstice/internal/shared"
)

// CatalogSource supplies catalog products for the rebuild snapshot.
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

// RuleSource supplies active mapping rules for the rebuild snapshot.
type RuleSource interface {
	ListActiveRules(ctx context.Context) ([]mapping.Rule, error)
}

// LineSource supplies included order line items and the source side of the
// revenue audit.
type LineSource interface {
	ListIncludedLines(ctx context.Context, invoiceStatuses []string) ([]orders.SourceLine, error)
	SumIncludedRevenue(ctx context.Context, invoiceStatuses []string) (float64, error)
}

// FactStore persists and queries the materialized fact set.
type FactStore interface {
	ReplaceAll(ctx context.Context, runID string, rows []FactRow) error
	List(ctx context.Context, req ListRequest) ([]FactRow, int, error)
	Summary(ctx context.Context, req SummaryRequest) ([]SummaryRow, error)
	VerifyCounts(ctx context.Context) (total, distinct, unmapped int64, err error)
	SumRevenue(ctx context.Context) (float64, error)
}

// ServiceConfig carries the tunables the materializer needs.
type ServiceConfig struct {
	InvoiceStatuses []string
}

// Service is the fact materializer: it rebuilds the fact set from source in
// one atomic unit and serves the query/audit surfaces, cache-aware.
type Service struct {
	catalogSrc CatalogSource
	ruleSrc    RuleSource
	lineSrc    LineSource
	store      FactStore
	cache      *Cache
	lock       *shared.RebuildLock
	metrics    *observability.Metrics
	logger     *slog.Logger
	cfg        ServiceConfig

	// rebuildMu is the single-slot, in-process rebuild guard; the redis lock
	// extends it across processes. Concurrent triggers are rejected, never
	// queued.
	rebuildMu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewService wires the materializer.
func NewService(catalogSrc CatalogSource, ruleSrc RuleSource, lineSrc LineSource, store FactStore, cache *Cache, lock *shared.RebuildLock, metrics *observability.Metrics, logger *slog.Logger, cfg ServiceConfig) *Service {
	if len(cfg.InvoiceStatuses) == 0 {
		cfg.InvoiceStatuses = []string{"invoiced", "paid"}
	}
	return &Service{
		catalogSrc: catalogSrc,
		ruleSrc:    ruleSrc,
		lineSrc:    lineSrc,
		store:      store,
		cache:      cache,
		lock:       lock,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Rebuild drops and regenerates the full fact set from current source data.
// At most one rebuild runs at a time; a second trigger returns
// shared.ErrRebuildInProgress. Resolution-level issues degrade to audited
// defaults; only feed failures abort, leaving the published set untouched.
func (s *Service) Rebuild(ctx context.Context) (RebuildResult, error) {
	if !s.rebuildMu.TryLock() {
		return RebuildResult{}, shared.ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()

	runID := s.newID()
	release, ok, err := s.lock.Acquire(ctx, runID)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	if !ok {
		return RebuildResult{}, shared.ErrRebuildInProgress
	}
	defer release()

	started := s.now()
	result, err := s.rebuild(ctx, runID)
	elapsed := s.now().Sub(started)
	result.StartedAt = started
	result.Duration = elapsed

	if err != nil {
		s.metrics.ObserveRebuild("failure", elapsed, 0, 0)
		if s.logger != nil {
			s.logger.Error("fact rebuild failed", slog.String("run_id", runID), slog.Any("error", err))
		}
		return result, err
	}

	s.metrics.ObserveRebuild("success", elapsed, result.TotalRows, result.UnmappedRows)
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("cache bump after rebuild", slog.Any("error", err))
	}
	if s.logger != nil {
		s.logger.Info("fact rebuild complete",
			slog.String("run_id", runID),
			slog.Int("rows", result.TotalRows),
			slog.Int("unmapped", result.UnmappedRows),
			slog.Int("bundles", result.BundleRows),
			slog.Int("warnings", result.Warnings),
			slog.Duration("elapsed", elapsed))
	}
	return result, nil
}

func (s *Service) rebuild(ctx context.Context, runID string) (RebuildResult, error) {
	result := RebuildResult{RunID: runID}

	var (
		products []catalog.Product
		rules    []mapping.Rule
		lines    []orders.SourceLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if products, err = s.catalogSrc.ListProducts(gctx); err != nil {
			return fmt.Errorf("%w: catalog feed: %v", shared.ErrSourceUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rules, err = s.ruleSrc.ListActiveRules(gctx); err != nil {
			return fmt.Errorf("%w: mapping feed: %v", shared.ErrSourceUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if lines, err = s.lineSrc.ListIncludedLines(gctx, s.cfg.InvoiceStatuses); err != nil {
			return fmt.Errorf("%w: order feed: %v", shared.ErrSourceUnavailable, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return result, err
	}

	snapshot := catalog.BuildSnapshot(products)
	ruleSet := mapping.BuildRuleSet(rules, s.logger)
	result.SkippedRules = ruleSet.Skipped()
	rv := resolver.New(snapshot, ruleSet)

	rows := make([]FactRow, 0, len(lines))
	for _, line := range lines {
		res := rv.Resolve(line.ProductSKU)
		rows = append(rows, FactRow{
			OrderID:            line.OrderID,
			LineItemID:         line.ID,
			OriginalSKU:        res.RawSKU,
			ProductName:        line.ProductName,
			ResolvedSKU:        res.CatalogSKU,
			Category:           res.Category,
			MatchType:          res.MatchType,
			MappingRule:        res.RuleName,
			QuantityMultiplier: res.Multiplier,
			OriginalQuantity:   line.Quantity,
			AdjustedQuantity:   line.Quantity * res.Multiplier,
			Revenue:            line.Subtotal,
			Channel:            line.Channel,
			Customer:           line.Customer,
			OrderDate:          line.OrderDate,
			RunID:              runID,
		})
		if res.Unmapped() {
			result.UnmappedRows++
		}
		if res.Bundle() {
			result.BundleRows++
		}
		result.Warnings += len(res.Warnings)
		for _, warning := range res.Warnings {
			if s.logger != nil {
				s.logger.Warn("resolution warning",
					slog.String("run_id", runID),
					slog.Int64("order_id", line.OrderID),
					slog.String("sku", res.RawSKU),
					slog.String("warning", warning))
			}
		}
	}
	result.TotalRows = len(rows)

	if err := s.store.ReplaceAll(ctx, runID, rows); err != nil {
		return result, fmt.Errorf("%w: fact store: %v", shared.ErrSourceUnavailable, err)
	}
	return result, nil
}

// ListPage bundles a fact page with its total for cache round-trips.
type ListPage struct {
	Rows  []FactRow `json:"rows"`
	Total int       `json:"total"`
}

// List serves the filterable query surface through the cache.
func (s *Service) List(ctx context.Context, req ListRequest) (ListPage, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		rows, total, err := s.store.List(ctx, req)
		if err != nil {
			return nil, err
		}
		return ListPage{Rows: rows, Total: total}, nil
	}

	key, err := s.cache.BuildKey(ctx, keyList(req)...)
	if err != nil {
		return ListPage{}, err
	}
	var page ListPage
	if err := s.cache.FetchJSON(ctx, key, &page, loader); err != nil {
		return ListPage{}, err
	}
	return page, nil
}

// Summarize serves the aggregation surface through the cache.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) ([]SummaryRow, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.store.Summary(ctx, req)
	}

	key, err := s.cache.BuildKey(ctx, keySummary(req)...)
	if err != nil {
		return nil, err
	}
	var rows []SummaryRow
	if err := s.cache.FetchJSON(ctx, key, &rows, loader); err != nil {
		return nil, err
	}
	return rows, nil
}

// Verify runs the audit checks against the live fact set and source feed,
// never through the cache.
func (s *Service) Verify(ctx context.Context) (VerificationReport, error) {
	var report VerificationReport

	total, distinct, unmapped, err := s.store.VerifyCounts(ctx)
	if err != nil {
		return report, err
	}
	factRevenue, err := s.store.SumRevenue(ctx)
	if err != nil {
		return report, err
	}
	sourceRevenue, err := s.lineSrc.SumIncludedRevenue(ctx, s.cfg.InvoiceStatuses)
	if err != nil {
		return report, fmt.Errorf("%w: order feed: %v", shared.ErrSourceUnavailable, err)
	}

	report = VerificationReport{
		TotalRows:        total,
		DistinctPairs:    distinct,
		DuplicateFree:    total == distinct,
		FactRevenue:      factRevenue,
		SourceRevenue:    sourceRevenue,
		RevenueConserved: moneyEqual(factRevenue, sourceRevenue),
		UnmappedRows:     unmapped,
	}
	return report, nil
}

// moneyEqual compares revenue sums with a half-cent tolerance for float
// accumulation drift.
func moneyEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.005
}
