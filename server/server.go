// Package server provides a Gin-backed HTTP server whose error responses
// always use the canonical apperrors wire shape.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/apierr/logger"
)

// Server wraps an http.Server serving a Gin engine.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	log        *logger.Logger
}

// New creates a Server with the recovery, request-id and request-logging
// middleware installed.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log = log.WithComponent("server")
	engine := gin.New()
	engine.Use(Recovery(log), RequestID(), RequestLogger(log))

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		log:    log,
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the port and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}
