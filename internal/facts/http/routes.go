package factshttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the fact dataset endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	// Rebuilds are expensive full-table swaps; throttle the trigger per
	// caller on top of the single-flight guard in the service.
	limiter := httprate.Limit(2, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/facts", h.handleList)
	r.Get("/facts/summary", h.handleSummary)
	r.Get("/facts/verification", h.handleVerification)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/facts/rebuild", h.handleRebuild)
	})
}
