package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/padworks/padlink/internal/bridge"
	"github.com/padworks/padlink/internal/device"
)

// connectRequest is the body of POST /device/connect. Port falls back to
// the configured default when empty; a non-positive baud rate falls back
// to the configured default baud.
type connectRequest struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

// deviceStatusResponse reports the connection state. Port and BaudRate
// are null while disconnected.
type deviceStatusResponse struct {
	Connected bool    `json:"connected"`
	Port      *string `json:"port"`
	BaudRate  *int    `json:"baud_rate"`
}

// handlePorts lists the serial devices visible to the host.
func (s *Server) handlePorts(w http.ResponseWriter, _ *http.Request) {
	ports, err := s.bridge.Ports()
	if err != nil {
		s.logger.Error("port enumeration failed", "error", err)
		writeInternalError(w, "failed to enumerate serial ports")
		return
	}
	if ports == nil {
		ports = []bridge.PortInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"ports":   ports,
	})
}

// handleConnect opens the serial device and starts the reader loop.
// Connecting while connected is not an HTTP error; it reports
// success=false with the currently held port so polling UIs can settle.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	st, err := s.bridge.Connect(req.Port, req.BaudRate)
	switch {
	case errors.Is(err, bridge.ErrAlreadyConnected):
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"detail":  fmt.Sprintf("Already connected to %s. Disconnect first.", st.Port),
		})
		return
	case errors.Is(err, bridge.ErrNoPort):
		writeBadRequest(w, "no serial port specified and no default configured")
		return
	case err != nil:
		writeBadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"port":      st.Port,
		"baud_rate": st.Baud,
	})
}

// handleDisconnect releases the serial device. Disconnecting while
// disconnected succeeds.
func (s *Server) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	if err := s.bridge.Disconnect(); err != nil {
		s.logger.Error("disconnect failed", "error", err)
		writeInternalError(w, "failed to disconnect")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"detail":  "Disconnected",
	})
}

// handleDeviceStatus reports whether a device is connected and on which port.
func (s *Server) handleDeviceStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.bridge.Status()
	resp := deviceStatusResponse{Connected: st.Connected}
	if st.Connected {
		resp.Port = &st.Port
		resp.BaudRate = &st.Baud
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleButtons returns the current button vector.
func (s *Server) handleButtons(w http.ResponseWriter, _ *http.Request) {
	buttons := s.store.Buttons()
	if buttons == nil {
		buttons = device.ButtonVector{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"buttons": buttons,
		"count":   len(buttons),
	})
}

// handleOrientation returns the latest tilt reading. Pitch and roll are
// null until the device reports them.
func (s *Server) handleOrientation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Orientation())
}

// handleEvents returns buffered press/release events in arrival order.
// clear=true consumes them.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	consume := false
	if raw := r.URL.Query().Get("clear"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(w, "clear must be a boolean")
			return
		}
		consume = parsed
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": s.history.Read(consume),
	})
}

// handleEventArchive queries the persistent event archive.
// since is an RFC 3339 timestamp; limit defaults server-side.
func (s *Server) handleEventArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeNotFound(w, "event archive is disabled")
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		since = parsed
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		limit = parsed
	}

	entries, err := s.archive.Recent(r.Context(), since, limit)
	if err != nil {
		s.logger.Error("archive query failed", "error", err)
		writeInternalError(w, "failed to query event archive")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": entries,
		"count":  len(entries),
	})
}
