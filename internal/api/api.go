// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stocksense/backend-go/internal/api/handlers"
	"github.com/andresuchdata/stocksense/backend-go/internal/api/middleware"
)

type Services struct {
	StockHealthService handlers.StockHealthService
}

// Options tunes the router. A nil Metrics disables /metrics.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	Metrics        *middleware.Metrics
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()
	if opts.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = opts.MaxUploadBytes
	}

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.MaxUploadBytes > 0 {
		router.Use(limitBody(opts.MaxUploadBytes))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	if services != nil && services.StockHealthService != nil {
		stockHealthHandler := handlers.NewStockHealthHandler(services.StockHealthService)
		apiGroup.POST("/process", stockHealthHandler.Process)
		apiGroup.GET("/mock", stockHealthHandler.Mock)
		apiGroup.GET("/dashboards/:id", stockHealthHandler.GetDashboard)
		apiGroup.GET("/runs", stockHealthHandler.ListRuns)
		apiGroup.GET("/stock", stockHealthHandler.StockItems)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

// limitBody caps request bodies; the multipart parser fails once exceeded.
func limitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
