package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/api"
	"github.com/pageza/foodshare/backend/internal/database"
	"github.com/pageza/foodshare/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(deps api.Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.RequestLogger(deps.Log))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(middleware.CORS(deps.Config.CORSOrigins))
	router.NoRoute(middleware.NotFound())

	router.GET("/healthz", healthCheck(deps))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if deps.Config.ImageStorage == config.StorageLocal {
		router.Static(deps.Config.MediaURL, deps.Config.MediaRoot)
	}

	api.SetupAPI(router.Group("/api"), deps)

	return router
}

func healthCheck(deps api.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, deps.DB); err != nil {
			deps.Log.WithError(err).Warn("Database health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
