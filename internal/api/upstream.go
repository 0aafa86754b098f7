package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/padworks/padlink/internal/upstream"
)

// defaultPostsLimit caps the placeholder posts feed when the request
// does not say how many it wants.
const defaultPostsLimit = 10

// keywordsRequest is the body of POST /keywords.
type keywordsRequest struct {
	Input string `json:"input"`
}

// writeUpstreamError maps upstream client failures onto HTTP statuses.
// A missing API key is the caller's fault; everything else is the
// remote service's.
func (s *Server) writeUpstreamError(w http.ResponseWriter, service string, err error) {
	if errors.Is(err, upstream.ErrMissingKey) {
		writeBadRequest(w, "API key not provided")
		return
	}
	s.logger.Error("upstream request failed", "service", service, "error", err)
	writeBadGateway(w, service+" request failed")
}

// handleWeather proxies a current-conditions lookup for a city.
// api_key in the query overrides the configured key.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeBadRequest(w, "city query parameter is required")
		return
	}

	data, err := s.upstream.Weather(r.Context(), city, r.URL.Query().Get("api_key"))
	if err != nil {
		s.writeUpstreamError(w, "weather", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// handlePosts proxies the placeholder posts feed.
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	limit := defaultPostsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		limit = parsed
	}

	data, err := s.upstream.Posts(r.Context(), limit)
	if err != nil {
		s.writeUpstreamError(w, "posts", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// handleUsers proxies the placeholder users feed.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	data, err := s.upstream.Users(r.Context())
	if err != nil {
		s.writeUpstreamError(w, "users", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// handleProxy forwards an arbitrary JSON API call described in the body.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	var req upstream.ProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeBadRequest(w, "url is required")
		return
	}

	data, err := s.upstream.Proxy(r.Context(), req)
	if err != nil {
		s.writeUpstreamError(w, "proxy", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// handleKeywords turns a free-form music description into concise
// generation keywords.
func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	var req keywordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Input == "" {
		writeBadRequest(w, "input is required")
		return
	}

	text, err := s.upstream.Keywords(r.Context(), req.Input)
	if err != nil {
		s.writeUpstreamError(w, "keywords", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response": text,
	})
}

// handleCompose streams a generated music clip straight through to the
// client without buffering the whole body.
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	prompt := r.URL.Query().Get("prompt")
	if prompt == "" {
		writeBadRequest(w, "prompt query parameter is required")
		return
	}

	duration := 0
	if raw := r.URL.Query().Get("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "duration must be an integer")
			return
		}
		duration = parsed
	}

	body, contentType, err := s.upstream.Compose(r.Context(), prompt, duration)
	if err != nil {
		s.writeUpstreamError(w, "compose", err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		// The client went away mid-stream; nothing to send it.
		s.logger.Debug("compose stream interrupted", "error", err)
	}
}
