package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"wavegate/internal/config"
	"wavegate/internal/gateway/middleware"
)

// Server is the reverse proxy that fronts the transcription backend and
// serves the static page.
type Server struct {
	config     config.GatewayConfig
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a gateway server from its configuration.
func NewServer(cfg config.GatewayConfig, logger *slog.Logger) *Server {
	if cfg.DeploymentMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	metrics := NewMetrics()
	proxy := NewProxy(cfg.UpstreamURL, cfg.UpstreamTimeout, metrics)
	static := NewStaticHandler(cfg.DocRoot)

	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Local liveness endpoint; never proxied.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	// Everything under the API prefix rides through to the upstream, body
	// capped for large WAV payloads.
	api := router.Group(cfg.APIPrefix)
	api.Use(middleware.BodyLimit(cfg.MaxBodyBytes, metrics.ObserveRejectedBody))
	api.Any("/*path", proxy.Forward)

	// Remaining paths serve the page, falling back to the entry document.
	router.NoRoute(static.Serve)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		config:     cfg,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start starts the gateway server
func (s *Server) Start() error {
	s.logger.Info("Starting gateway",
		"address", s.httpServer.Addr,
		"upstream", s.config.UpstreamURL,
		"api_prefix", s.config.APIPrefix,
		"doc_root", s.config.DocRoot,
		"mode", s.config.DeploymentMode,
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Failed to start gateway", "error", err)
			os.Exit(1)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down gateway...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Gateway forced to shutdown", "error", err)
		return err
	}

	s.logger.Info("Gateway shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
