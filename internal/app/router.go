package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/africanut/holding-admin/internal/auth"
	"github.com/africanut/holding-admin/internal/hr"
	"github.com/africanut/holding-admin/internal/ledger"
	"github.com/africanut/holding-admin/internal/observability"
	"github.com/africanut/holding-admin/internal/platform/httpx"
	"github.com/africanut/holding-admin/internal/session"
	"github.com/africanut/holding-admin/internal/shop"
	"github.com/africanut/holding-admin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	Session       *session.Holder
	AuthHandler   *auth.Handler
	LedgerHandler *ledger.Handler
	ShopHandler   *shop.Handler
	HRHandler     *hr.Handler
	JobsHandler   *jobs.Handler
	Metrics       *observability.Metrics
}

// NewRouter constructs the chi.Router with gateway defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		signedIn := params.Session != nil && params.Session.Authenticated(time.Now())
		httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok", "backendSession": signedIn})
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.LedgerHandler != nil {
		r.Route("/accounting", params.LedgerHandler.MountRoutes)
	}
	if params.ShopHandler != nil {
		r.Route("/store", params.ShopHandler.MountRoutes)
	}
	if params.HRHandler != nil {
		r.Route("/hr", params.HRHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", r.URL.Path)
	})
	return r
}
