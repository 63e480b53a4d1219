// Package api exposes the ledger and the voice upload over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voicebudget/voice-ledger/internal/audio"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// Router is the API router
type Router struct {
	handler        *Handler
	middleware     *Middleware
	allowedOrigins []string
	logger         *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(records RecordService, voice VoiceProcessor, intake *audio.Intake, allowedOrigins []string, logger *logger.Logger) *Router {
	return &Router{
		handler:        NewHandler(records, voice, intake, logger),
		middleware:     NewMiddleware(logger),
		allowedOrigins: allowedOrigins,
		logger:         logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.allowedOrigins))

	router.Route("/api", func(router chi.Router) {
		router.Post("/upload", r.handler.UploadVoice)

		// Record routes
		router.Get("/records/summary", r.handler.GetSummary)
		router.Post("/records", r.handler.CreateRecord)
		router.Get("/records/{id}", r.handler.GetRecord)
		router.Put("/records/{id}", r.handler.UpdateRecord)
		router.Delete("/records/{id}", r.handler.DeleteRecord)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	return router
}
