package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quietroom/lockcore/internal/emergency"
	"github.com/quietroom/lockcore/internal/history"
	"github.com/quietroom/lockcore/internal/infrastructure/config"
	"github.com/quietroom/lockcore/internal/infrastructure/logging"
	"github.com/quietroom/lockcore/internal/lock"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight
// requests before dropping them.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds everything the API server needs. Logger, Engine and
// History are mandatory; the rest degrade gracefully when absent.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Engine    *lock.Engine
	Emergency *emergency.Manager
	History   history.Repository
	Hub       *Hub // if set, the server uses this hub instead of creating its own
	Version   string
}

// Server exposes the lock over HTTP and WebSocket: status, triggers,
// history, the user registry and emergency operations.
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	engine    *lock.Engine
	emergency *emergency.Manager
	repo      history.Repository
	exporter  *history.Exporter
	version   string

	server      *http.Server
	hub         *Hub
	externalHub bool
	tickets     *ticketStore
	cancel      context.CancelFunc
}

// New validates deps and builds a server. Nothing listens until
// Start().
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("lock engine is required")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("history repository is required")
	}
	// The emergency manager is optional; its routes 404 without it.

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		engine:    deps.Engine,
		emergency: deps.Emergency,
		repo:      deps.History,
		exporter:  history.NewExporter(deps.History),
		version:   deps.Version,
		tickets:   newTicketStore(),
	}

	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the server's WebSocket hub, creating it on first use so
// callers can wire it as a transition notifier before Start().
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start launches the hub, the ticket janitor and the HTTP listener.
// It returns immediately; listener errors are logged, not returned.
// Stop with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	// Abandoned WebSocket tickets expire rather than accumulate.
	go s.tickets.cleanLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go s.serve()
	return nil
}

func (s *Server) serve() {
	var err error
	if s.cfg.TLS.Enabled {
		s.logger.Info("API server starting with TLS",
			"address", s.server.Addr,
			"cert", s.cfg.TLS.CertFile,
		)
		err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	} else {
		s.logger.Info("API server starting", "address", s.server.Addr)
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("API server error", "error", err)
	}
}

// Close drains in-flight requests, bounded by gracefulShutdownTimeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

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

// HealthCheck verifies the server has been started.
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
