package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog-backend/internal/infrastructure/database"
	"catalog-backend/internal/shared/middleware"
	"catalog-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigin),
		c.Metrics.Middleware(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	requireSession := middleware.AccessGuard(c.UserService, c.Config.Auth.CookieName)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c.DB, c.Cache))

		setupAuthRoutes(api, c)
		setupAuthorRoutes(api, c, requireSession)
		setupBookRoutes(api, c, requireSession)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container) {
	api.POST("/signup", c.UserHandler.Signup)
	api.POST("/login", c.UserHandler.Login)
	api.POST("/logout", c.UserHandler.Logout)
	api.GET("/logincheck", c.UserHandler.LoginCheck)
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(api *gin.RouterGroup, c *container.Container, requireSession gin.HandlerFunc) {
	authors := api.Group("/authors")
	{
		// Public
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/:id", c.AuthorHandler.GetByID)

		// Cần session
		authors.POST("", requireSession, c.AuthorHandler.Create)
		authors.PUT("/:id", requireSession, c.AuthorHandler.Update)
		authors.DELETE("/:id", requireSession, c.AuthorHandler.Delete)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(api *gin.RouterGroup, c *container.Container, requireSession gin.HandlerFunc) {
	books := api.Group("/books")
	{
		books.GET("", c.BookHandler.List)
		books.GET("/:id", c.BookHandler.GetByID)

		books.POST("", requireSession, c.BookHandler.Create)
		books.PUT("/:id", requireSession, c.BookHandler.Update)
		books.DELETE("/:id", requireSession, c.BookHandler.Delete)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================

type pinger interface {
	Ping(ctx context.Context) error
}

// poolChecker là database có thêm pool statistics
type poolChecker interface {
	pinger
	Stats() (*database.PoolStats, error)
}

// healthCheckHandler: database lỗi -> 503, redis lỗi chỉ là degraded
func healthCheckHandler(db poolChecker, cache pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		statusCode := http.StatusOK

		dbStatus := ping(c.Request.Context(), db)
		if dbStatus != "ok" {
			status = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}

		redisStatus := ping(c.Request.Context(), cache)
		if redisStatus != "ok" && statusCode == http.StatusOK {
			status = "degraded"
		}

		body := gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		}
		if db != nil {
			if stats, err := db.Stats(); err == nil {
				body["pool"] = stats
			}
		}

		c.JSON(statusCode, body)
	}
}

func ping(ctx context.Context, p pinger) string {
	if p == nil {
		return "disconnected"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
