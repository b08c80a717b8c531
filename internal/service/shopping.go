package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/foodshare/backend/internal/types"
)

// ShoppingList sums the amounts of every ingredient across the recipes in
// userID's cart, one line per ingredient ordered by name.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uint) ([]types.ShoppingListLine, error) {
	lines := []types.ShoppingListLine{}
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, CAST(SUM(recipe_ingredients.amount) AS BIGINT) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return lines, nil
}

// RenderShoppingList formats lines as the downloadable text file
func RenderShoppingList(lines []types.ShoppingListLine) string {
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s (%s) — %d\n", i+1, line.Name, line.MeasurementUnit, line.Amount)
	}
	return b.String()
}
