package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bidding-service/internal/config"
	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Server serves the WebSocket endpoint, the health check and the REST API
// on one listener
type Server struct {
	handler    *WsHandler
	httpServer *http.Server
	config     *config.Config
	logger     zerolog.Logger
}

type ServerParams struct {
	Config               *config.Config
	MemberRepo           outbound.MemberRepository
	BiddingService       inbound.BiddingService
	ParticipationService inbound.ParticipationService
	Broadcaster          outbound.Broadcaster
	API                  http.Handler
	Logger               zerolog.Logger
}

func NewServer(params ServerParams) *Server {
	handler := NewHandler(WsHandlerParams{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  params.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: params.Config.WebSocket.WriteBufferSize,
		},
		MemberRepo:           params.MemberRepo,
		BiddingService:       params.BiddingService,
		ParticipationService: params.ParticipationService,
		Broadcaster:          params.Broadcaster,
		Logger:               params.Logger,
	})

	router := chi.NewRouter()
	router.Get("/ws", handler.HandleWebSocket)
	router.Get("/health", handleHealth)
	if params.API != nil {
		router.Mount("/api/v1", params.API)
	}

	httpServer := &http.Server{
		Addr:         params.Config.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Minute,
	}

	return &Server{
		handler:    handler,
		httpServer: httpServer,
		config:     params.Config,
		logger:     params.Logger.With().Str("component", "http_server").Logger(),
	}
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("Starting HTTP and WebSocket server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Int("connected_clients", s.handler.GetConnectedClients()).Msg("Stopping server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok", "service": "bidding-service"}`))
}
