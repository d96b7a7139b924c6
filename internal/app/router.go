package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angkor-trade/angkor-trade/internal/catalog"
	"github.com/angkor-trade/angkor-trade/internal/customers"
	"github.com/angkor-trade/angkor-trade/internal/export"
	"github.com/angkor-trade/angkor-trade/internal/invoices"
	"github.com/angkor-trade/angkor-trade/internal/observability"
	"github.com/angkor-trade/angkor-trade/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CustomersHandler *customers.Handler
	CatalogHandler   *catalog.Handler
	InvoicesHandler  *invoices.Handler
	ExportHandler    *export.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router for the JSON API.
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
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/customers", params.CustomersHandler.MountRoutes)
	r.Route("/products", params.CatalogHandler.MountRoutes)
	// Document export lives on the invoices subtree; chi routes the static
	// /export segment ahead of the /{id} pattern.
	r.Route("/invoices", func(r chi.Router) {
		params.ExportHandler.MountRoutes(r)
		params.InvoicesHandler.MountRoutes(r)
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
