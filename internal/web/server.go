package web

import (
	"context"
	"fmt"
	"net/http"

	"signal-relay/internal/usecase"

	"go.uber.org/zap"
)

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	service *usecase.RelayService
	logger  *zap.Logger
}

func NewServer(port int, service *usecase.RelayService, logger *zap.Logger) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		service: service,
		logger:  logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Webhook
	s.router.HandleFunc("POST /webhook", s.handleWebhook)

	// Liveness
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
