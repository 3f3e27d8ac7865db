// Package server exposes a scan controller over HTTP: REST endpoints to
// start and stop scanning and a websocket stream of scan events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"github.com/coral-mesh/qrscan/internal/constants"
	"github.com/coral-mesh/qrscan/internal/scan"
	"github.com/coral-mesh/qrscan/pkg/version"
)

// Controller is the part of scan.Controller the server drives.
type Controller interface {
	Start(ctx context.Context) <-chan error
	Stop()
	State() scan.State
	Stats() scan.Stats
}

// Config contains dependencies for creating a server.
type Config struct {
	// Listen is the host:port to bind.
	Listen string

	// MaxClients caps concurrent connections. Default: constants.DefaultServerMaxClients.
	MaxClients int

	// StartTimeout bounds camera acquisition for a start request.
	StartTimeout time.Duration

	Controller Controller

	// Hub must be the controller's event handler so clients see events.
	Hub *Hub

	Logger zerolog.Logger
}

// Server is the HTTP host.
type Server struct {
	cfg        Config
	hub        *Hub
	httpServer *http.Server
	logger     zerolog.Logger
}

// New creates a server. Call ListenAndServe or Serve to run it.
func New(cfg Config) (*Server, error) {
	if cfg.Controller == nil {
		return nil, errors.New("server requires a controller")
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = constants.DefaultServerMaxClients
	}
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = constants.DefaultCameraOpenTimeout
	}

	logger := cfg.Logger.With().Str("component", "server").Logger()
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub(constants.DefaultEventBuffer, logger)
	}

	s := &Server{
		cfg:    cfg,
		hub:    hub,
		logger: logger,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(hub.closeAll)

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog(s.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, version.Get())
	})

	r.Route("/api/scan", func(r chi.Router) {
		r.With(s.controlGuard).Post("/start", s.handleStart)
		r.With(s.controlGuard).Post("/stop", s.handleStop)
		r.Get("/state", s.handleState)
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.handleEvents)
	})

	return r
}

// ListenAndServe binds cfg.Listen and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully and
// disconnects websocket clients.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ln = netutil.LimitListener(ln, s.cfg.MaxClients)

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Int("max_clients", s.cfg.MaxClients).
		Msg("Starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// stateResponse is returned by the control endpoints.
type stateResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.StartTimeout)
	defer cancel()

	err, ok := <-s.cfg.Controller.Start(ctx)
	resp := stateResponse{State: s.cfg.Controller.State().String()}

	switch {
	case !ok:
		resp.Error = "scanner is not idle"
		s.writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, scan.ErrStartAborted):
		resp.Error = err.Error()
		s.writeJSON(w, http.StatusConflict, resp)
	case err != nil:
		resp.Error = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
	default:
		s.writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.cfg.Controller.Stop()
	s.writeJSON(w, http.StatusOK, stateResponse{State: s.cfg.Controller.State().String()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, stateResponse{State: s.cfg.Controller.State().String()})
}

// statsResponse adds hub counters to the controller stats.
type statsResponse struct {
	scan.Stats
	Clients       int    `json:"clients"`
	DroppedEvents uint64 `json:"dropped_events"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statsResponse{
		Stats:         s.cfg.Controller.Stats(),
		Clients:       s.hub.Clients(),
		DroppedEvents: s.hub.Dropped(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write response")
	}
}
