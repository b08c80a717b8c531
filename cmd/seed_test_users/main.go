package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/database"
	"github.com/pageza/foodshare/backend/internal/logging"
	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/service"
)

const testPassword = "testpassword123"

var testUsers = []models.User{
	{Username: "johndoe", Email: "john.doe@example.com", FirstName: "John", LastName: "Doe"},
	{Username: "janesmith", Email: "jane.smith@example.com", FirstName: "Jane", LastName: "Smith"},
	{Username: "bobwilson", Email: "bob.wilson@example.com", FirstName: "Bob", LastName: "Wilson"},
}

var testTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

// Seeds a development database with users and tags and prints a bearer
// token for each user, since tokens are otherwise minted elsewhere.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.Env == config.Production {
		logrus.Fatal("Refusing to seed a production database")
	}
	log := logging.New(cfg)

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash password")
	}

	for _, tag := range testTags {
		if err := db.Where(models.Tag{Slug: tag.Slug}).FirstOrCreate(&tag).Error; err != nil {
			log.WithError(err).WithField("slug", tag.Slug).Error("Failed to create tag")
		}
	}

	auth := service.NewAuthService(db, cfg.JWTSecret)
	ctx := context.Background()

	for _, user := range testUsers {
		err := db.WithContext(ctx).Where("email = ?", user.Email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user.PasswordHash = string(hash)
			err = db.WithContext(ctx).Create(&user).Error
		}
		if err != nil {
			log.WithError(err).WithField("email", user.Email).Error("Failed to seed user")
			continue
		}

		token, err := auth.GenerateToken(user.ID)
		if err != nil {
			log.WithError(err).WithField("email", user.Email).Error("Failed to sign token")
			continue
		}
		fmt.Printf("%-12s %-26s Bearer %s\n", user.Username, user.Email, token)
	}

	log.WithField("password", testPassword).Info("Test users ready")
}
