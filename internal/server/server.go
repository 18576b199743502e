// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the retrieval engine over HTTP. It is a thin
// translation layer: requests are decoded, handed to the engine, and
// engine error kinds are mapped onto status codes. No ranking logic
// lives here.
//
// See docs/ARCHITECTURE § Service Layer.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// shutdownGrace bounds how long in-flight requests may run after a stop
// signal before the listener is torn down.
const shutdownGrace = 10 * time.Second

// devOrigins are the CORS origins allowed when no explicit origin is
// configured. They cover the usual local frontend dev servers.
var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// Server wraps an echo instance configured with the search routes.
type Server struct {
	cfg    types.ServerConfig
	echo   *echo.Echo
	logger *slog.Logger
}

// New builds the HTTP server around the given handler.
func New(cfg types.ServerConfig, h *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	origins := devOrigins
	if cfg.AllowedOrigin != "" {
		origins = []string{cfg.AllowedOrigin}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	h.register(e)

	return &Server{cfg: cfg, echo: e, logger: logger}
}

// Start serves until ctx is cancelled, then drains in-flight requests
// before returning.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	s.logger.Info("server listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
