package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/api"
	"github.com/pageza/foodshare/backend/internal/metrics"
	"github.com/pageza/foodshare/backend/internal/middleware"
	"github.com/pageza/foodshare/backend/internal/router"
	"github.com/pageza/foodshare/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *logrus.Logger
}

// New wires every handler onto a fresh router. rdb may be nil, in which
// case recipe creation is not rate limited.
func New(cfg *config.Config, db *gorm.DB, log *logrus.Logger, images service.ImageStore, rdb *redis.Client) *Server {
	if cfg.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.SetupRouter(api.Dependencies{
		DB:          db,
		Config:      cfg,
		Log:         log,
		Images:      images,
		Metrics:     metrics.New(),
		RateLimiter: middleware.NewRecipeCreationRateLimiter(rdb, cfg.RecipeCreateLimit, log),
	})

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("Starting server")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
