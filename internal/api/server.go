package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerConfig holds server configuration options.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration.
// WriteTimeout is generous because POST /api/scans blocks for a whole scan.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

// NewHTTPServer wraps the router in an http.Server using cfg's timeouts.
func NewHTTPServer(cfg *ServerConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// NewServer creates a gin engine with all routes configured.
// The gin mode is left to the caller (gin.SetMode is process-global).
func NewServer(handler *Handler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	setupRoutes(r, handler)
	return r
}

// setupRoutes configures all the application routes.
func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.HealthCheck)

	api := r.Group("/api")
	{
		api.POST("/scans", handler.CreateScan)
		api.GET("/scans", handler.ListScans)
		api.GET("/scans/:id", handler.GetScan)
		api.GET("/scans/:id/csv", handler.GetScanCSV)
		api.GET("/entities", handler.ListEntities)
	}
}

// requestLogger logs one structured line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"error", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}
