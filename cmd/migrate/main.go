package main

import (
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/database"
	"github.com/pageza/foodshare/backend/internal/logging"
	"github.com/pageza/foodshare/backend/internal/models"
)

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "List the tables that would be migrated without touching the database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := logging.New(cfg)

	if *dryRun {
		for _, model := range models.All() {
			log.WithField("model", fmt.Sprintf("%T", model)).Info("Would migrate")
		}
		return
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Migration failed")
	}
	log.WithField("tables", len(models.All())).Info("Schema is up to date")
}
