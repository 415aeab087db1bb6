package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"cornerwatch-go/internal/api/handlers"
	"cornerwatch-go/internal/api/middleware"
	"cornerwatch-go/internal/config"
	"cornerwatch-go/internal/services"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler      *handlers.HealthHandler
	statusHandler      *handlers.StatusHandler
	configHandler      *handlers.ConfigHandler
	monitoringHandler  *handlers.MonitoringHandler
	ownershipHandler   *handlers.OwnershipHandler
	calibrationHandler *handlers.CalibrationHandler
	eventsHandler      *handlers.EventsHandler
	capturesHandler    *handlers.CapturesHandler
	systemHandler      *handlers.SystemHandler
	container          *services.ServiceContainer
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:             cfg,
		router:             gin.New(),
		container:          container,
		healthHandler:      handlers.NewHealthHandler(cfg.Version),
		statusHandler:      handlers.NewStatusHandler(container),
		configHandler:      handlers.NewConfigHandler(container.Coordinator),
		monitoringHandler:  handlers.NewMonitoringHandler(container.Coordinator, container.Runtime),
		ownershipHandler:   handlers.NewOwnershipHandler(container.Coordinator),
		calibrationHandler: handlers.NewCalibrationHandler(container),
		eventsHandler:      handlers.NewEventsHandler(container.Events, cfg.MaxEvents),
		capturesHandler:    handlers.NewCapturesHandler(container.Captures),
		systemHandler:      handlers.NewSystemHandler(cfg.Version, container.Events, container.Messaging),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting HTTP API")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Stopping HTTP API")
	return s.server.Shutdown(ctx)
}
