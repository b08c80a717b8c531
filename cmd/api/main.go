package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/database"
	"github.com/pageza/foodshare/backend/internal/logging"
	"github.com/pageza/foodshare/backend/internal/server"
	"github.com/pageza/foodshare/backend/internal/service"
)

func main() {
	bootLog := logrus.New()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog.WithError(err).Fatal("Invalid configuration")
	}
	log := logging.New(cfg)

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}()

	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = database.NewRedisClient(cfg, log)
		if err != nil {
			// Continue without rate limiting if Redis is not available
			log.WithError(err).Warn("Redis unavailable, recipe creation will not be rate limited")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	images, err := newImageStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up image storage")
	}

	srv := server.New(cfg, db, log, images, rdb)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.WithError(err).Fatal("Server error")
		}
		return
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received signal")
	}

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown error")
		return
	}
	log.Info("Server stopped")
}

func newImageStore(cfg *config.Config) (service.ImageStore, error) {
	if cfg.ImageStorage == config.StorageS3 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return service.NewS3ImageStore(s3Config), nil
	}
	return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
}
