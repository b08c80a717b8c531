package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/metrics"
	"github.com/pageza/foodshare/backend/internal/middleware"
	"github.com/pageza/foodshare/backend/internal/service"
)

// Dependencies are the shared collaborators of every handler
type Dependencies struct {
	DB          *gorm.DB
	Config      *config.Config
	Log         *logrus.Logger
	Images      service.ImageStore
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
}

// SetupAPI builds the services and registers every route on group
func SetupAPI(group *gin.RouterGroup, deps Dependencies) {
	authService := service.NewAuthService(deps.DB, deps.Config.JWTSecret)
	recipeService := service.NewRecipeService(deps.DB, deps.Images, deps.Log)
	userService := service.NewUserService(deps.DB, deps.Log)
	catalogService := service.NewCatalogService(deps.DB)

	NewRecipeHandler(recipeService, authService, deps).RegisterRoutes(group)
	NewUserHandler(userService, authService, deps).RegisterRoutes(group)
	NewCatalogHandler(catalogService, deps).RegisterRoutes(group)
}

// viewerID is the caller's user id, or 0 for anonymous requests
func viewerID(c *gin.Context) uint {
	id, _ := middleware.UserID(c)
	return id
}

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
