// Package rest exposes the withdrawal and status HTTP API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	treasuryApp "github.com/fd1az/treasury-bot/business/treasury/app"
	withdrawalApp "github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/logger"
)

const requestBodyLimit = 1 << 20 // 1 MiB

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server hosts the REST API over the dispatcher and treasury read side.
type Server struct {
	config     ServerConfig
	dispatcher *withdrawalApp.Dispatcher
	treasury   *treasuryApp.TreasuryService
	logger     logger.LoggerInterface

	server *http.Server
}

// NewServer creates the REST server.
func NewServer(cfg ServerConfig, dispatcher *withdrawalApp.Dispatcher, treasury *treasuryApp.TreasuryService, log logger.LoggerInterface) *Server {
	return &Server{
		config:     cfg,
		dispatcher: dispatcher,
		treasury:   treasury,
		logger:     log,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/withdrawals", s.handleWithdraw)
		r.Get("/treasury/status", s.handleStatus)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(ctx, "rest server stopped", "error", err)
		}
	}()

	s.logger.Info(ctx, "rest server listening", "port", s.config.Port)
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// writeJSON writes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its structured HTTP response.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := apperror.Wrap(err, apperror.CodeInternalError, "")
	s.writeJSON(w, appErr.StatusCode, appErr.ToResponse())
}
