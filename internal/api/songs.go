package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/padworks/padlink/internal/songs"
)

// handleSongSave stores an uploaded song. The request is multipart form
// data: a required "file" part plus optional "prompt" and "duration_ms"
// fields describing how the audio was generated.
func (s *Server) handleSongSave(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	var prompt *string
	if v := r.FormValue("prompt"); v != "" {
		prompt = &v
	}

	var durationMS *int64
	if v := r.FormValue("duration_ms"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeBadRequest(w, "duration_ms must be an integer")
			return
		}
		durationMS = &parsed
	}

	song, err := s.songs.Save(r.Context(), file, prompt, durationMS)
	if err != nil {
		s.logger.Error("song save failed", "error", err)
		writeInternalError(w, "failed to save song")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"id":          song.ID,
		"url":         song.URL,
		"prompt":      song.Prompt,
		"duration_ms": song.DurationMS,
	})
}

// handleSongList returns every saved song's metadata, oldest first.
func (s *Server) handleSongList(w http.ResponseWriter, r *http.Request) {
	list, err := s.songs.List(r.Context())
	if err != nil {
		s.logger.Error("song list failed", "error", err)
		writeInternalError(w, "failed to list songs")
		return
	}
	if list == nil {
		list = []songs.Song{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"songs": list,
	})
}

// handleSongFile serves the audio file a song URL points to. The path
// segment is "<id>.mp3"; anything else is not found.
func (s *Server) handleSongFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	id := strings.TrimSuffix(name, ".mp3")
	if id == name || id == "" {
		writeNotFound(w, "song not found")
		return
	}

	path, err := s.songs.FilePath(id)
	if err != nil {
		writeNotFound(w, "song not found")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}
