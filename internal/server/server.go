package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"linkstash/internal/middlewares"
	"linkstash/internal/remote"
	"linkstash/internal/services"
)

type Server struct {
	port       int
	httpServer *http.Server

	identity remote.IdentityService
	store    remote.BookmarkStore
	registry *services.Registry
	cancel   context.CancelFunc
}

func NewServer() *Server {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		log.Warn().Str("port", os.Getenv("PORT")).Msg("Invalid PORT environment variable. Using default 8080.")
		port = 8080
	}

	remote.InitProviders()

	client := remote.NewClient(os.Getenv("DATA_API_URL"), os.Getenv("DATA_API_KEY"))
	store := remote.NewBookmarkStore(client)
	realtime := remote.NewRealtimeClient(os.Getenv("REALTIME_URL"), os.Getenv("DATA_API_KEY"))

	ctx, cancel := context.WithCancel(context.Background())
	go middlewares.CleanupVisitors(ctx)

	s := &Server{
		port:     port,
		identity: remote.NewIdentityService(),
		store:    store,
		registry: services.NewRegistry(ctx, store, realtime),
		cancel:   cancel,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	s.registry.CloseAll()
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
