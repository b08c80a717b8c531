package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/models"
)

// AutoMigrate creates or updates every table, index and constraint the
// application needs.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
