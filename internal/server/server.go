// Package server serves the tour over HTTP.
//
// Every browser gets its own session, identified by a cookie. Plain form
// posts work without JavaScript; the editor script upgrades to a websocket
// for navigation and code write-back.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/typetour/internal/catalog"
	"github.com/conneroisu/typetour/internal/config"
	"github.com/conneroisu/typetour/internal/logging"
	"github.com/conneroisu/typetour/internal/session"
	"github.com/conneroisu/typetour/internal/view"
)

const (
	sessionCookie     = "typetour_session"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server is the tour's HTTP front end.
type Server struct {
	config  *config.Config
	catalog *catalog.Catalog
	store   *session.Store
	logger  logging.Logger
	router  chi.Router

	// baseCtx is cancelled on shutdown so that hijacked websocket
	// connections stop reading.
	baseCtx    context.Context
	cancelBase context.CancelFunc

	httpServer   *http.Server
	stopCleanup  func()
	serverMutex  sync.Mutex
	shutdownOnce sync.Once
}

// New creates a server for the pages in c. Each session works on its own
// copy of c.
func New(cfg *config.Config, c *catalog.Catalog, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	opts := view.Options{
		Height:   cfg.Editor.Height,
		Width:    cfg.Editor.Width,
		Language: cfg.Editor.Language,
		Theme:    cfg.Editor.Theme,
		FontSize: cfg.Editor.FontSize,
	}
	store := session.NewStore(c, opts, session.StoreConfig{
		MaxSessions: cfg.Session.MaxSessions,
		TTL:         cfg.Session.TTL,
	}, logger)

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:     cfg,
		catalog:    c,
		store:      store,
		logger:     logger,
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/previous", s.handleNavigate(session.Retreat))
	r.Post("/next", s.handleNavigate(session.Advance))
	r.Post("/code", s.handleCode)
	r.Get("/api/page", s.handlePageAPI)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	static, err := fs.Sub(view.Assets, "static")
	if err != nil {
		// view.Assets embeds the static directory, so this cannot happen.
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return r
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.store.Len()
}

// Start listens on the configured address until ctx is done or Shutdown is
// called.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Address()

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return s.baseCtx },
	}
	srv := s.httpServer
	s.stopCleanup = s.store.StartCleanup(s.config.Session.CleanupInterval)
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Serving tour",
		"address", "http://"+addr,
		"pages", s.catalog.Len(),
		"language", s.catalog.Language())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting requests, ends websocket connections, and closes
// every session. Calls after the first return nil.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cancelBase()

		s.serverMutex.Lock()
		srv := s.httpServer
		stop := s.stopCleanup
		s.serverMutex.Unlock()

		if stop != nil {
			stop()
		}
		if srv != nil {
			if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
				err = fmt.Errorf("shutting down http server: %w", shutdownErr)
			}
		}
		s.store.Close()
		s.logger.Info(ctx, "Server stopped")
	})
	return err
}
