package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	_ "github.com/rogerio-castellano/inventory-catalog/docs"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/ban"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/handlers"
	mw "github.com/rogerio-castellano/inventory-catalog/internal/http/middleware"
	rl "github.com/rogerio-castellano/inventory-catalog/internal/http/rate_limiter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Deps is everything the router wires together.
type Deps struct {
	Server *handlers.Server
	Logger *zap.Logger

	CORSOrigins []string

	// Limiter and Tracker enable rate limiting when both are set.
	Limiter *rl.RateLimiter
	Tracker ban.Tracker

	// DocsURL mounts the Swagger UI when not empty, e.g. "/docs".
	DocsURL string
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recoverer(logger))
	r.Use(mw.CORS(d.CORSOrigins))
	if d.Limiter != nil && d.Tracker != nil {
		r.Use(mw.RateLimit(d.Limiter, d.Tracker, logger))
	}

	r.NotFound(handlers.NotFoundHandler)
	r.MethodNotAllowed(handlers.MethodNotAllowedHandler)

	s := d.Server
	r.Get("/", s.RootHandler)
	r.Get("/health", s.HealthHandler)

	r.Route("/materials", func(r chi.Router) {
		r.Post("/", s.CreateMaterialHandler)
		r.Get("/", s.GetMaterialsHandler)
		r.Get("/metrics", s.GetDashboardMetricsHandler)
		r.Get("/export", s.ExportMaterialsHandler)
		r.Post("/import", s.ImportMaterialsHandler)
		r.Get("/{id}", s.GetMaterialByIDHandler)
		r.Put("/{id}", s.UpdateMaterialHandler)
		r.Patch("/{id}", s.UpdateMaterialHandler)
		r.Delete("/{id}", s.DeleteMaterialHandler)
	})

	if docsURL := strings.TrimRight(d.DocsURL, "/"); docsURL != "" {
		r.Get(docsURL, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, docsURL+"/index.html", http.StatusMovedPermanently)
		})
		r.Get(docsURL+"/*", httpSwagger.Handler(httpSwagger.URL(docsURL+"/doc.json")))
	}

	return r
}
