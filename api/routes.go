package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes wires every endpoint. Identity resolution runs on the whole
// group; whether anonymous is acceptable is decided per operation by the
// authorization guard.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, startupTime time.Time) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.resolveActor)
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", healthHandler(startupTime))

		// Accounts
		r.Post("/register", handlers.authHandler.register())
		r.Post("/login", handlers.authHandler.login())

		// Stories: public reads, authenticated writes
		r.Get("/stories", handlers.storyHandler.listPublic())
		r.Post("/stories", handlers.storyHandler.createStory())
		r.Get("/stories/{storyID}", handlers.storyHandler.getStory())
		r.Put("/stories/{storyID}", handlers.storyHandler.updateStory())
		r.Delete("/stories/{storyID}", handlers.storyHandler.deleteStory())
		r.Post("/stories/{storyID}/audio", handlers.storyHandler.attachAudio())

		// Author dashboard
		r.Get("/user/stories", handlers.storyHandler.myStories())

		// Moderation
		r.Get("/admin/stories", handlers.adminHandler.listByStatus())
		r.Post("/admin/stories/{storyID}/moderate", handlers.adminHandler.moderate())

		// External collaborators
		r.Post("/upload", handlers.uploadHandler.uploadImage())
		r.Post("/tts", handlers.ttsHandler.synthesize())
	})
}

func healthHandler(startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "health").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, map[string]any{
			"status": "ok",
			"uptime": time.Since(startupTime).String(),
		})
	}
}
