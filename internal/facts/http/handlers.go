package factshttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/solstice-analytics/solstice/internal/facts"
	"github.com/solstice-analytics/solstice/internal/shared"
)

const requestTimeout = 10 * time.Second

// FactsService defines the fact dataset contract used by the handler.
type FactsService interface {
	Rebuild(ctx context.Context) (facts.RebuildResult, error)
	List(ctx context.Context, req facts.ListRequest) (facts.ListPage, error)
	Summarize(ctx context.Context, req facts.SummaryRequest) ([]facts.SummaryRow, error)
	Verify(ctx context.Context) (facts.VerificationReport, error)
}

// Handler coordinates HTTP requests for the fact query and audit surface.
type Handler struct {
	logger   *slog.Logger
	service  FactsService
	validate *validator.Validate
}

// NewHandler constructs the facts HTTP handler.
func NewHandler(logger *slog.Logger, service FactsService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

type listResponse struct {
	Rows       []facts.FactRow   `json:"rows"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page, err := h.service.List(ctx, req)
	if err != nil {
		h.respondServerError(w, "list facts", err)
		return
	}
	h.respondJSON(w, http.StatusOK, listResponse{
		Rows:       page.Rows,
		Pagination: shared.NewPagination(req.Page, req.PerPage, page.Total),
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	req, err := parseSummaryRequest(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rows, err := h.service.Summarize(ctx, req)
	if err != nil {
		h.respondServerError(w, "summarize facts", err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"group_by": req.GroupBy, "rows": rows})
}

func (h *Handler) handleVerification(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.service.Verify(ctx)
	if err != nil {
		h.respondServerError(w, "verify facts", err)
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	// The rebuild owns its own lifetime; it must finish or fail even if the
	// caller goes away.
	result, err := h.service.Rebuild(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, shared.ErrRebuildInProgress):
		h.respondError(w, http.StatusConflict, err)
		return
	case err != nil:
		h.respondServerError(w, "rebuild facts", err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func parseListRequest(r *http.Request) (facts.ListRequest, error) {
	q := r.URL.Query()
	req := facts.ListRequest{
		Channel:   q.Get("channel"),
		Category:  q.Get("category"),
		MatchType: q.Get("match_type"),
	}
	var err error
	if req.From, err = parseDate(q.Get("from")); err != nil {
		return req, err
	}
	if req.To, err = parseDate(q.Get("to")); err != nil {
		return req, err
	}
	if req.Page, err = parseInt(q.Get("page")); err != nil {
		return req, err
	}
	if req.PerPage, err = parseInt(q.Get("per_page")); err != nil {
		return req, err
	}
	return req, nil
}

func parseSummaryRequest(r *http.Request) (facts.SummaryRequest, error) {
	q := r.URL.Query()
	req := facts.SummaryRequest{GroupBy: q.Get("group_by")}
	if req.GroupBy == "" {
		req.GroupBy = "category"
	}
	var err error
	if req.From, err = parseDate(q.Get("from")); err != nil {
		return req, err
	}
	if req.To, err = parseDate(q.Get("to")); err != nil {
		return req, err
	}
	return req, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("dates must use YYYY-MM-DD")
	}
	return t, nil
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("numeric query parameters must be non-negative integers")
	}
	return v, nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Warn("encode response", slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, err error) {
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) respondServerError(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
	h.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}
