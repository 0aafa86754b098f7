package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/padworks/padlink/internal/bridge"
	"github.com/padworks/padlink/internal/broadcast"
	"github.com/padworks/padlink/internal/device"
	"github.com/padworks/padlink/internal/infrastructure/config"
	"github.com/padworks/padlink/internal/infrastructure/database"
	"github.com/padworks/padlink/internal/infrastructure/logging"
	"github.com/padworks/padlink/internal/songs"
	"github.com/padworks/padlink/internal/tiles"
	"github.com/padworks/padlink/internal/upstream"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight
// requests before dropping them.
const gracefulShutdownTimeout = 10 * time.Second

// Deps collects everything the API server serves from. Pointers are
// required unless noted.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Bridge   *bridge.Manager
	Store    *device.StateStore
	History  *device.History
	Hub      *broadcast.Hub
	Archive  device.Archive // optional; nil disables the archive endpoint
	Songs    *songs.Library
	Tiles    *tiles.Generator
	Upstream *upstream.Client
	DB       *database.DB // optional; nil omits pool stats from system info
	Version  string
	Commit   string
}

// Server is the HTTP API server for padlink.
//
// It manages the HTTP listener, routes, middleware, and per-connection
// WebSocket pumps. The server is created with New() and started with
// Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	logger   *logging.Logger
	bridge   *bridge.Manager
	store    *device.StateStore
	history  *device.History
	hub      *broadcast.Hub
	archive  device.Archive
	songs    *songs.Library
	tiles    *tiles.Generator
	upstream *upstream.Client
	db       *database.DB
	version  string
	commit   string

	server *http.Server

	// baseCtx is cancelled by Close() so WebSocket connections, which
	// graceful shutdown cannot reach, are torn down too.
	baseCtx   context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// New wires a Server from deps, rejecting any missing required
// dependency. Nothing listens until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Bridge == nil {
		return nil, fmt.Errorf("bridge manager is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("event history is required")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("broadcast hub is required")
	}
	if deps.Songs == nil {
		return nil, fmt.Errorf("songs library is required")
	}
	if deps.Tiles == nil {
		return nil, fmt.Errorf("tile generator is required")
	}
	if deps.Upstream == nil {
		return nil, fmt.Errorf("upstream client is required")
	}

	return &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		bridge:    deps.Bridge,
		store:     deps.Store,
		history:   deps.History,
		hub:       deps.Hub,
		archive:   deps.Archive,
		songs:     deps.Songs,
		tiles:     deps.Tiles,
		upstream:  deps.Upstream,
		db:        deps.DB,
		version:   deps.Version,
		commit:    deps.Commit,
		startTime: time.Now(),
	}, nil
}

// Start builds the router and launches the listener in a background
// goroutine. Stop it with Close.
func (s *Server) Start(ctx context.Context) error {
	// WebSocket pumps run on a child of ctx that Close can cancel on
	// its own, without waiting for the parent.
	s.baseCtx, s.cancel = context.WithCancel(ctx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close drains the server: WebSocket connections are cancelled
// immediately (Shutdown never waits on hijacked connections), then
// in-flight requests get gracefulShutdownTimeout to finish.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Close WebSocket connections (Shutdown ignores hijacked conns).
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
