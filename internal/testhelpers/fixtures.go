package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/models"
)

const TestPassword = "s3cret-passw0rd"

// CreateTestUser inserts a user whose password is TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// CreateTag inserts a tag with a unique color derived from its slug
func CreateTag(t *testing.T, db *gorm.DB, slug string) models.Tag {
	t.Helper()

	tag := models.Tag{
		Name:  slug,
		Slug:  slug,
		Color: "#" + uuid.New().String()[:6],
	}
	if err := db.Create(&tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

// Line is one (ingredient, amount) of a fixture recipe
type Line struct {
	Ingredient models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its ingredient amounts and tags
// directly, bypassing validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author models.User, name string, lines []Line, tags ...models.Tag) models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        fmt.Sprintf("How to cook %s", name),
		CookingTime: 10,
		Image:       "/media/recipes/images/" + uuid.New().String() + ".png",
	}
	if err := db.Omit("Author", "Ingredients", "Tags").Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}

	for _, line := range lines {
		ri := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
		if err := db.Omit("Ingredient").Create(&ri).Error; err != nil {
			t.Fatalf("failed to add ingredient to %s: %v", name, err)
		}
	}
	for _, tag := range tags {
		if err := db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to tag %s: %v", name, err)
		}
	}
	return recipe
}
