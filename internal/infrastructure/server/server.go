package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/panelfs/backend/internal/api/http"
	"github.com/GriffinCanCode/panelfs/backend/internal/api/middleware"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/operation"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/protected"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/resolver"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/users"
	"github.com/GriffinCanCode/panelfs/backend/internal/gateway"
	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/panelfs/backend/internal/providers/drives"
	"github.com/GriffinCanCode/panelfs/backend/internal/providers/filesystem"
)

// ShutdownTimeout bounds in-flight request draining on Close
const ShutdownTimeout = 15 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	gateway *gateway.Gateway
	users   *users.Store
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		logger = logging.NewDefault()
		logger.Warn("Invalid log configuration, using defaults", zap.Error(err))
	}

	logger.Info("Initializing file gateway",
		zap.String("port", cfg.Server.Port),
		zap.String("storage_root", cfg.Storage.Root),
		zap.Strings("external_prefixes", cfg.Storage.ExternalPrefixes),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("panelfs", logger.Component("tracing"))

	store, err := users.NewStore(cfg.Storage.UsersPath(), cfg.Storage.Root, users.WithLogger(logger.Component("users")))
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open user registry: %w", err)
	}
	if err := store.EnsureLayout(); err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to prepare storage root: %w", err)
	}

	registry, err := protected.NewRegistry(cfg.Storage.FoldersPath())
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open protected folder registry: %w", err)
	}

	res := resolver.New(cfg.Storage.Root, cfg.Storage.ExternalPrefixes)
	gw, err := gateway.New(gateway.Deps{
		Resolver:        res,
		Users:           store,
		Registry:        registry,
		Engine:          filesystem.New(res, logger.Component("filesystem")),
		Drives:          drives.New(logger.Component("drives")),
		Tracker:         operation.NewTracker(cfg.Operations.Retention),
		Metrics:         metrics,
		Logger:          logger.Component("gateway"),
		BulkConcurrency: cfg.Operations.BulkConcurrency,
	})
	if err != nil {
		tracer.Close()
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.AllowOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	identity := middleware.IdentityConfig{
		Secret:      cfg.Auth.JWTSecret,
		Issuer:      cfg.Auth.JWTIssuer,
		TrustHeader: cfg.Auth.TrustHeader,
	}

	handlers := apihttp.NewHandlers(gw, store, apihttp.Options{
		Identity:       identity,
		MaxUploadBytes: cfg.Operations.MaxUploadBytes,
	}, logger.Component("http"))
	handlers.Register(router, middleware.Identity(identity, logger.Component("identity")))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		gateway: gw,
		users:   store,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Router exposes the configured engine
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves HTTP until Close is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close drains in-flight requests, flushes spans and syncs the logger
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Failed to drain HTTP server", zap.Error(err))
		err = fmt.Errorf("failed to shut down http server: %w", err)
	}

	s.tracer.Close()
	_ = s.logger.Sync()
	return err
}
