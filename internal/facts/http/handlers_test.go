package factshttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-analytics/solstice/internal/facts"
	"github.com/solstice-analytics/solstice/internal/shared"
)

type stubService struct {
	rebuildResult facts.RebuildResult
	rebuildErr    error
	page          facts.ListPage
	listErr       error
	report        facts.VerificationReport

	lastList    facts.ListRequest
	lastSummary facts.SummaryRequest
}

func (s *stubService) Rebuild(ctx context.Context) (facts.RebuildResult, error) {
	return s.rebuildResult, s.rebuildErr
}

func (s *stubService) List(ctx context.Context, req facts.ListRequest) (facts.ListPage, error) {
	s.lastList = req
	return s.page, s.listErr
}

func (s *stubService) Summarize(ctx context.Context, req facts.SummaryRequest) ([]facts.SummaryRow, error) {
	s.lastSummary = req
	return []facts.SummaryRow{{Key: "BARRAS", Rows: 3, Revenue: 120}}, nil
}

func (s *stubService) Verify(ctx context.Context) (facts.VerificationReport, error) {
	return s.report, nil
}

func newTestRouter(svc *stubService) http.Handler {
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func TestHandleListParsesFilters(t *testing.T) {
	svc := &stubService{page: facts.ListPage{Total: 1}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/facts?from=2025-12-01&to=2025-12-31&channel=shopify&match_type=unmapped&page=2&per_page=25", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shopify", svc.lastList.Channel)
	assert.Equal(t, "unmapped", svc.lastList.MatchType)
	assert.Equal(t, 2, svc.lastList.Page)
	assert.Equal(t, 25, svc.lastList.PerPage)
	assert.Equal(t, "2025-12-01", svc.lastList.From.Format("2006-01-02"))
}

func TestHandleListRejectsBadDate(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facts?from=december", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListRejectsUnknownMatchType(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facts?match_type=fuzzy", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSummaryDefaultsToCategory(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facts/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "category", svc.lastSummary.GroupBy)
}

func TestHandleRebuildConflict(t *testing.T) {
	svc := &stubService{rebuildErr: shared.ErrRebuildInProgress}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/facts/rebuild", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRebuildReturnsResult(t *testing.T) {
	svc := &stubService{rebuildResult: facts.RebuildResult{RunID: "run-1", TotalRows: 5}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/facts/rebuild", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result facts.RebuildResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 5, result.TotalRows)
}

func TestHandleVerification(t *testing.T) {
	svc := &stubService{report: facts.VerificationReport{TotalRows: 9, DistinctPairs: 9, DuplicateFree: true}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facts/verification", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var report facts.VerificationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.DuplicateFree)
}
