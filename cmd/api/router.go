package main

import (
	"context"
	"net/http"
	"time"

	"flipper-backend/internal/resource"
	"flipper-backend/internal/shared/middleware"
	"flipper-backend/internal/shared/response"
	"flipper-backend/pkg/container"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 50 << 20

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
		middleware.BodyLimit(maxBodyBytes),
	)

	if c.Config.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	guard := adminGuard(c)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		// Site content is admin-managed, public forms stay open
		c.ProjectHandler.Register(api, guard...)
		c.ClientHandler.Register(api, guard...)
		c.ContactHandler.Register(api)
		c.NewsletterHandler.Register(api)

		setupAdminRoutes(api, c, guard)
	}

	router.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Route not found")
	})

	return router
}

// adminGuard is empty when no admin password is configured
func adminGuard(c *container.Container) []gin.HandlerFunc {
	if c.JWTManager == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.AdminMiddleware(c.JWTManager)}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(api *gin.RouterGroup, c *container.Container, guard []gin.HandlerFunc) {
	admin := api.Group("/admin")
	{
		if c.LoginLimiter != nil {
			admin.POST("/login", c.LoginLimiter.Middleware(), c.AdminHandler.Login)
		}
		admin.GET("/export/:kind", append(append([]gin.HandlerFunc{}, guard...), c.AdminHandler.Export)...)
	}
}

// healthCheckHandler always answers 200; store connectivity is reported in the body
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeStatus := "connected"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if appCtx.Store == nil || appCtx.Store.Ping(ctx) != nil {
			storeStatus = "disconnected"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "Server is running",
			"timestamp": time.Now().UTC().Format(resource.TimestampLayout),
			"store":     storeStatus,
			"message":   "Backend API is operational",
		})
	}
}
