package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/types"
)

const newestRecipesOrder = "recipes.pub_date DESC, recipes.id DESC"

// withRecipeDetails preloads everything a RecipeView needs
func withRecipeDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient")
}

func minified(r models.Recipe) types.RecipeMinified {
	return types.RecipeMinified{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func authorView(u models.User, subscribed bool) types.AuthorView {
	return types.AuthorView{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func recipeView(r models.Recipe, author types.AuthorView, favorited, inCart bool) types.RecipeView {
	ingredients := make([]types.RecipeIngredientView, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientView{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return types.RecipeView{
		ID:               r.ID,
		Author:           author,
		Name:             r.Name,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		Ingredients:      ingredients,
		Tags:             tags,
		Image:            r.Image,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
	}
}

// projector turns rows into caller-relative views. The is_* flags are all
// false for anonymous callers (viewer 0).
type projector struct {
	db            *gorm.DB
	favorites     *MembershipStore[models.Favorite]
	cart          *MembershipStore[models.ShoppingCartEntry]
	subscriptions *MembershipStore[models.Subscription]
}

func newProjector(db *gorm.DB) *projector {
	return &projector{
		db:            db,
		favorites:     NewFavoriteStore(db),
		cart:          NewCartStore(db),
		subscriptions: NewSubscriptionStore(db),
	}
}

func (p *projector) recipeViews(ctx context.Context, viewer uint, recipes []models.Recipe) ([]types.RecipeView, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := p.favorites.Targets(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.cart.Targets(ctx, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := p.subscriptions.Targets(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]types.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		author := authorView(r.Author, subscribed[r.AuthorID])
		views = append(views, recipeView(r, author, favorited[r.ID], inCart[r.ID]))
	}
	return views, nil
}

func (p *projector) recipeViewOf(ctx context.Context, viewer uint, recipe models.Recipe) (types.RecipeView, error) {
	views, err := p.recipeViews(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return types.RecipeView{}, err
	}
	return views[0], nil
}

func (p *projector) authorViews(ctx context.Context, viewer uint, users []models.User) ([]types.AuthorView, error) {
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := p.subscriptions.Targets(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	views := make([]types.AuthorView, 0, len(users))
	for _, u := range users {
		views = append(views, authorView(u, subscribed[u.ID]))
	}
	return views, nil
}

// withRecipes attaches the author's recipe count and up to limit of their
// newest recipes.
func (p *projector) withRecipes(ctx context.Context, view types.AuthorView, limit int) (types.AuthorWithRecipes, error) {
	out := types.AuthorWithRecipes{AuthorView: view, Recipes: []types.RecipeMinified{}}

	q := p.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", view.ID)
	if err := q.Session(&gorm.Session{}).Count(&out.RecipesCount).Error; err != nil {
		return out, fmt.Errorf("failed to count recipes: %w", err)
	}
	if limit <= 0 || out.RecipesCount == 0 {
		return out, nil
	}

	var recipes []models.Recipe
	if err := q.Session(&gorm.Session{}).Order(newestRecipesOrder).Limit(limit).Find(&recipes).Error; err != nil {
		return out, fmt.Errorf("failed to load recipes: %w", err)
	}
	for _, r := range recipes {
		out.Recipes = append(out.Recipes, minified(r))
	}
	return out, nil
}
