// Package httptransport assembles the HTTP surface: middleware chain, public
// pause routes, guarded admin routes, health and metrics endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flowguard/internal/pause/handler"
	"flowguard/pkg/platform/middleware/admin"
	"flowguard/pkg/platform/middleware/metadata"
	"flowguard/pkg/platform/middleware/request"
	"flowguard/pkg/platform/middleware/requesttime"
)

// Config carries the router's cross-cutting settings.
type Config struct {
	// AdminJWTSecret signs the HS256 bearer tokens accepted on /admin.
	AdminJWTSecret string
}

// NewRouter wires the full HTTP surface. The pause handlers stay thin; all
// behavior lives in the services behind them.
func NewRouter(h *handler.Handler, cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	h.Register(r)

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(admin.RequireAdminToken(cfg.AdminJWTSecret, logger))
		h.RegisterAdmin(ar)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
