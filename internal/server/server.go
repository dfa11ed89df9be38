package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fsgate/fsgate/internal/config"
	"github.com/fsgate/fsgate/internal/logging"
	"github.com/fsgate/fsgate/internal/monitoring"
	"github.com/fsgate/fsgate/internal/providers/filesystem"
	"github.com/fsgate/fsgate/internal/providers/policy"
	"github.com/fsgate/fsgate/internal/security"
	"github.com/fsgate/fsgate/internal/types"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	registry   *Registry
	store      *security.Store
	audit      *security.Audit
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	httpServer *http.Server
}

// Config contains server configuration
type Config struct {
	Host     string
	Port     string
	Resolver *config.Resolver
	Logger   *logging.Logger
}

// NewServer resolves the policy, builds the validators, and wires the
// providers into an HTTP server.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefault()
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = config.NewResolver(nil)
	}

	resolution := resolver.Resolve()
	for _, warning := range resolution.Warnings {
		logger.Warn("configuration warning", zap.String("detail", warning))
	}
	for _, errMsg := range resolution.Errors {
		logger.Error("configuration error", zap.String("detail", errMsg))
	}

	metrics := monitoring.NewMetrics()
	store := security.NewStore(resolution.Policy)
	audit := security.NewAudit(logger)
	paths := security.NewPathValidator(store, audit, resolver.Home, metrics)
	files := security.NewFileValidator(store, metrics)

	registry := NewRegistry()
	if err := registry.Register(filesystem.NewProvider(store, paths, files, logger)); err != nil {
		return nil, err
	}
	if err := registry.Register(policy.NewProvider(store, audit, paths, files, resolver, logger, metrics)); err != nil {
		return nil, err
	}

	logger.Info("policy resolved",
		zap.String("level", resolution.Policy.Level.String()),
		zap.Strings("allowed_dirs", resolution.Policy.AllowedDirs),
		zap.Int64("max_file_size", resolution.Policy.MaxFileSize),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORS())
	router.Use(RateLimit(DefaultRateLimitConfig()))
	router.Use(monitoring.Middleware(metrics))

	s := &Server{
		router:   router,
		registry: registry,
		store:    store,
		audit:    audit,
		logger:   logger,
		metrics:  metrics,
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/services", s.handleServices)
	s.router.POST("/execute", s.handleExecute)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "fsgate",
		"status":  "running",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"level":  s.store.Current().Level.String(),
		"events": s.audit.Len(),
	})
}

func (s *Server) handleServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": s.registry.List()})
}

type executeRequest struct {
	ToolID  string                 `json:"tool_id" binding:"required"`
	Params  map[string]interface{} `json:"params"`
	Context *types.Context         `json:"context"`
}

func (s *Server) handleExecute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Params == nil {
		req.Params = make(map[string]interface{})
	}

	timer := monitoring.NewTimer(s.metrics, "gateway", req.ToolID)
	result, err := s.registry.Execute(c.Request.Context(), req.ToolID, req.Params, req.Context)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if result.Success {
		timer.Stop("success")
	} else {
		timer.Stop("failure")
	}
	c.JSON(http.StatusOK, result)
}
