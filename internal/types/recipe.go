package types

import (
	"github.com/pageza/foodshare/backend/internal/models"
)

// RecipeMinified is the short recipe form used by toggles, carts and
// subscription previews.
type RecipeMinified struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorView is a user as seen by the caller
type AuthorView struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// AuthorWithRecipes adds recipe previews to an AuthorView
type AuthorWithRecipes struct {
	AuthorView
	RecipesCount int64            `json:"recipes_count"`
	Recipes      []RecipeMinified `json:"recipes"`
}

// RecipeIngredientView is one ingredient line of a recipe
type RecipeIngredientView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeView is the full recipe representation
type RecipeView struct {
	ID               uint                   `json:"id"`
	Author           AuthorView             `json:"author"`
	Name             string                 `json:"name"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	Tags             []models.Tag           `json:"tags"`
	Image            string                 `json:"image"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
}

// UserCreated is returned by POST /users
type UserCreated struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ShoppingListLine is one aggregated ingredient of a shopping list
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// Page is a slice of results plus the total row count
type Page[T any] struct {
	Count   int64
	Results []T
}
