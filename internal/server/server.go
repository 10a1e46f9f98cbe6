package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"

	"github.com/holographix/ridepro/internal/ingest"
	"github.com/holographix/ridepro/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	ingest *ingest.Service
	log    *slog.Logger
	apiKey string
	lc     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, ingestSvc *ingest.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		ingest: ingestSvc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale enables tsnet-based identity resolution. Without it,
// every request runs as the local dev user.
func (s *Server) SetTailscale(lc *local.Client) {
	s.lc = lc
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Mutating endpoints require the API key.
	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Get("/slug/{slug}", s.handleGetWorkoutBySlug)
		r.Get("/{id}", s.handleGetWorkout)
		r.Get("/{id}/metrics", s.handleWorkoutMetrics)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/import", s.handleImport)
			r.Delete("/{id}", s.handleDeleteWorkout)
		})
	})

	s.router.Get("/api/v1/formats", s.handleFormats)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/me", s.handleMe)
}
