// Route registration and go-chi router setup.
// Public routes: /health and the HTML form. JSON routes under /api/v1 are gated by an
// access token when a secret is configured.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/askexpert/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/askexpert/internal/api/middleware"
)

// Deps are the collaborators the router serves.
type Deps struct {
	Asker       handlers.Asker
	Credentials handlers.CredentialResolver
	Prober      handlers.Prober
	// AccessTokenSecret enables the Bearer check on /api/v1 when non-empty.
	AccessTokenSecret []byte
	Logger            *zap.Logger
}

// NewRouter creates and configures a new chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apmiddleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES =====

	// Health check, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	formHandler := handlers.NewFormHandler(deps.Asker)
	r.Get("/", formHandler.Show)    // GET /
	r.Post("/", formHandler.Submit) // POST /

	// ===== JSON API =====

	askHandler := handlers.NewAskHandler(deps.Asker)
	probeHandler := handlers.NewProbeHandler(deps.Credentials, deps.Prober)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.RequireAccessToken(deps.AccessTokenSecret))

		r.Get("/personas", handlers.ListPersonas) // GET /api/v1/personas
		r.Post("/ask", askHandler.Ask)            // POST /api/v1/ask
		r.Get("/probe", probeHandler.Probe)       // GET /api/v1/probe
	})

	return r
}
