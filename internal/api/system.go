package api

import (
	"net/http"
	"runtime"
	"time"
)

// serviceName identifies this service in the info endpoint.
const serviceName = "padlink"

// SystemInfo identifies the running build.
type SystemInfo struct {
	Service       string        `json:"service"`
	Version       string        `json:"version"`
	Commit        string        `json:"commit"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Runtime       RuntimeInfo   `json:"runtime"`
	Database      *DatabaseInfo `json:"database,omitempty"`
}

// RuntimeInfo contains Go runtime statistics.
type RuntimeInfo struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// DatabaseInfo contains database connection pool statistics.
type DatabaseInfo struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
}

// PipelineStats is a diagnostics snapshot of the serial-to-network
// pipeline: parse and emit totals since process start, fan-out queue
// pressure, and consumer counts.
type PipelineStats struct {
	Timestamp       string `json:"timestamp"`
	Connected       bool   `json:"connected"`
	LinesParsed     uint64 `json:"lines_parsed"`
	EventsEmitted   uint64 `json:"events_emitted"`
	EventsDropped   uint64 `json:"events_dropped"`
	QueueDepth      int    `json:"queue_depth"`
	QueueCapacity   int    `json:"queue_capacity"`
	Subscribers     int    `json:"subscribers"`
	HistoryLength   int    `json:"history_length"`
	HistoryCapacity int    `json:"history_capacity"`
}

// handleSystemInfo returns build identity and process statistics.
func (s *Server) handleSystemInfo(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	info := SystemInfo{
		Service:       serviceName,
		Version:       s.version,
		Commit:        s.commit,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeInfo{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		info.Database = &DatabaseInfo{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
		}
	}

	writeJSON(w, http.StatusOK, info)
}

// handleSystemStats returns the pipeline diagnostics snapshot.
func (s *Server) handleSystemStats(w http.ResponseWriter, _ *http.Request) {
	counters := s.bridge.Counters()

	writeJSON(w, http.StatusOK, PipelineStats{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Connected:       s.bridge.Status().Connected,
		LinesParsed:     counters.Lines,
		EventsEmitted:   counters.Events,
		EventsDropped:   s.hub.Dropped(),
		QueueDepth:      s.hub.QueueDepth(),
		QueueCapacity:   s.hub.QueueCapacity(),
		Subscribers:     s.hub.Subscribers(),
		HistoryLength:   s.history.Len(),
		HistoryCapacity: s.history.Capacity(),
	})
}
