package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter assembles the chi router: middleware stack, then the
// probe endpoints, then the versioned API.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	// Liveness probe
	r.Get("/health", s.handleHealth)

	// Saved audio, served at the path song URLs point to
	r.Get("/songs/files/{file}", s.handleSongFile)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.bodySizeLimit(maxRequestBodySize))

			// Serial bridge endpoints
			r.Route("/device", func(r chi.Router) {
				r.Get("/ports", s.handlePorts)
				r.Post("/connect", s.handleConnect)
				r.Post("/disconnect", s.handleDisconnect)
				r.Get("/status", s.handleDeviceStatus)
				r.Get("/buttons", s.handleButtons)
				r.Get("/orientation", s.handleOrientation)
				r.Get("/events", s.handleEvents)
				r.Get("/events/archive", s.handleEventArchive)
			})

			// Live event stream
			r.Get("/ws", s.handleWebSocket)

			// Songs library (uploads live in the wide-body group below)
			r.Get("/songs/list", s.handleSongList)

			// Tile layout generator
			r.Post("/tiles/generate", s.handleTilesGenerate)

			// Upstream proxies
			r.Get("/weather", s.handleWeather)
			r.Get("/posts", s.handlePosts)
			r.Get("/users", s.handleUsers)
			r.Post("/proxy", s.handleProxy)
			r.Post("/keywords", s.handleKeywords)
			r.Get("/compose", s.handleCompose)

			// System endpoints
			r.Route("/system", func(r chi.Router) {
				r.Get("/info", s.handleSystemInfo)
				r.Get("/stats", s.handleSystemStats)
			})
		})

		// Multipart uploads need a wider body cap than JSON requests.
		r.Group(func(r chi.Router) {
			r.Use(s.bodySizeLimit(maxUploadBodySize))
			r.Post("/songs/save", s.handleSongSave)
		})
	})

	return r
}

// handleHealth returns the server liveness status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
	})
}
