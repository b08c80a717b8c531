package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodshare/backend/config"
	"github.com/pageza/foodshare/backend/internal/database"
	"github.com/pageza/foodshare/backend/internal/logging"
	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/testhelpers"
)

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "foodshare.db"),
	}

	db, err := database.New(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.AutoMigrate(db))
	assert.NoError(t, database.HealthCheck(context.Background(), db))

	for _, table := range []string{"users", "subscriptions", "ingredients", "tags", "recipes", "recipe_ingredients", "recipe_tags", "favorites", "shopping_cart_entries"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := database.New(&config.Config{DBDriver: "oracle"}, logging.Discard())
	assert.Error(t, err)
}

func TestPostgresConstraints(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	author := testhelpers.CreateTestUser(t, db, "author")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, "Bread", []testhelpers.Line{{Ingredient: flour, Amount: 1}})

	err := db.Create(&models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: flour.ID, Amount: 2}).Error
	assert.Error(t, err, "(recipe, ingredient) must be unique")

	err = db.Create(&models.Favorite{UserID: author.ID, RecipeID: recipe.ID}).Error
	require.NoError(t, err)
	err = db.Create(&models.Favorite{UserID: author.ID, RecipeID: recipe.ID}).Error
	assert.Error(t, err, "(user, recipe) favorites must be unique")

	require.NoError(t, db.Delete(&models.User{}, author.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "deleting the author cascades to recipes")
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)
}
