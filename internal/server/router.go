// Package server exposes the transcript analysis pipeline over HTTP. All
// endpoints are stateless: each request carries the full corpus it
// operates on and nothing is persisted between requests.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the chi router with the standard middleware stack and
// mounts all API routes on the given handler.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Post("/process", h.HandleProcessChat)
		})

		r.Route("/security", func(r chi.Router) {
			r.Post("/analyze", h.HandleAnalyze)
			r.Post("/sensitive-data", h.HandleSensitiveData)
			r.Post("/redacted", h.HandleRedacted)
		})

		r.Route("/search", func(r chi.Router) {
			r.Post("/semantic", h.HandleSemanticSearch)
			r.Post("/similar", h.HandleSimilarMessages)
			r.Post("/topics", h.HandleTopics)
			r.Post("/insights", h.HandleInsights)
			r.Post("/answer", h.HandleAnswerQuestion)
		})
	})

	return r
}
