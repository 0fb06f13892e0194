package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/api/middleware"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/checker"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/config"
)

type Server struct {
	router *chi.Mux
	engine *checker.Checker
	logger *zap.Logger
}

func NewServer(engine *checker.Checker, logger *zap.Logger) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{router: r, engine: engine, logger: logger}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/generate-report", s.handleGenerateReport)
		r.Get("/conflicts", s.handleGetConflicts)
		r.Get("/documents", s.handleGetDocuments)
		r.Post("/documents/clear", s.handleClearDocuments)
		r.Get("/stats", s.handleGetStats)

		r.Route("/monitor-url", func(r chi.Router) {
			r.Post("/", s.handleMonitorURL)
			r.Post("/{sourceID}/poll", s.handlePollSource)
			r.Post("/{sourceID}/review", s.handleMarkReviewed)
		})
	})
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
