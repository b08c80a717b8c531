package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/types"
)

// RecipeService handles recipe writes, reads and the favorite and shopping
// cart toggles.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
	log    *logrus.Logger
	*projector
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore, log *logrus.Logger) *RecipeService {
	return &RecipeService{
		db:        db,
		images:    images,
		log:       log,
		projector: newProjector(db),
	}
}

// Create validates req, stores its image and inserts the recipe with its
// ingredient amounts and tags in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req *types.RecipeRequest) (types.RecipeView, error) {
	if err := s.validate(ctx, req, true); err != nil {
		return types.RecipeView{}, err
	}

	image, err := storeImage(ctx, s.images, req.Image)
	if err != nil {
		return types.RecipeView{}, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       image.URL,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return replaceRecipeLinks(tx, recipe.ID, req)
	})
	if err != nil {
		s.discardImage(ctx, image)
		return types.RecipeView{}, err
	}

	s.log.WithFields(logrus.Fields{
		"recipe_id": recipe.ID,
		"author_id": authorID,
	}).Info("Recipe created")

	return s.Get(ctx, recipe.ID, authorID)
}

// Update overwrites every field of a recipe owned by userID. The image is
// kept when req.Image is empty.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, req *types.RecipeRequest) (types.RecipeView, error) {
	recipe, err := s.owned(ctx, userID, recipeID)
	if err != nil {
		return types.RecipeView{}, err
	}
	if err := s.validate(ctx, req, false); err != nil {
		return types.RecipeView{}, err
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"text":         req.Text,
		"cooking_time": req.CookingTime,
	}
	var image storedImage
	if req.Image != "" {
		image, err = storeImage(ctx, s.images, req.Image)
		if err != nil {
			return types.RecipeView{}, err
		}
		updates["image"] = image.URL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		return replaceRecipeLinks(tx, recipe.ID, req)
	})
	if err != nil {
		if image.Key != "" {
			s.discardImage(ctx, image)
		}
		return types.RecipeView{}, err
	}

	s.log.WithField("recipe_id", recipe.ID).Info("Recipe updated")
	return s.Get(ctx, recipe.ID, userID)
}

// discardImage removes an image whose recipe write was rolled back
func (s *RecipeService) discardImage(ctx context.Context, image storedImage) {
	if err := s.images.Delete(ctx, image.Key); err != nil {
		s.log.WithError(err).WithField("key", image.Key).Warn("Failed to remove orphaned image")
	}
}

// Delete removes a recipe owned by userID along with every row that
// references it.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.owned(ctx, userID, recipeID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range []interface{}{
			&models.Favorite{},
			&models.ShoppingCartEntry{},
			&models.RecipeIngredient{},
			&models.RecipeTag{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(row).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("recipe_id", recipe.ID).Info("Recipe deleted")
	return nil
}

// Get returns a single recipe as seen by viewer (0 for anonymous)
func (s *RecipeService) Get(ctx context.Context, recipeID, viewer uint) (types.RecipeView, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Scopes(withRecipeDetails).First(&recipe, recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.RecipeView{}, notFound("recipe", recipeID)
	}
	if err != nil {
		return types.RecipeView{}, fmt.Errorf("failed to load recipe: %w", err)
	}
	return s.recipeViewOf(ctx, viewer, recipe)
}

// List returns one page of recipes, newest first. The favorite and cart
// filters only apply to an authenticated viewer.
func (s *RecipeService) List(ctx context.Context, viewer uint, filter types.RecipeFilter, page types.PageRequest) (types.Page[types.RecipeView], error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		if err := s.tagSlugsExist(ctx, filter.TagSlugs); err != nil {
			return types.Page[types.RecipeView]{}, err
		}
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if viewer != 0 && filter.IsFavorited {
		q = q.Where("recipes.id IN (?)", s.favorites.OwnerSubquery(viewer))
	}
	if viewer != 0 && filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)", s.cart.OwnerSubquery(viewer))
	}

	rows, err := paginate[models.Recipe](q, page, newestRecipesOrder, withRecipeDetails)
	if err != nil {
		return types.Page[types.RecipeView]{}, err
	}

	views, err := s.recipeViews(ctx, viewer, rows.Results)
	if err != nil {
		return types.Page[types.RecipeView]{}, err
	}
	return types.Page[types.RecipeView]{Count: rows.Count, Results: views}, nil
}

// Cart returns one page of the recipes in userID's shopping cart
func (s *RecipeService) Cart(ctx context.Context, userID uint, page types.PageRequest) (types.Page[types.RecipeMinified], error) {
	q := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("recipes.id IN (?)", s.cart.OwnerSubquery(userID))

	rows, err := paginate[models.Recipe](q, page, newestRecipesOrder)
	if err != nil {
		return types.Page[types.RecipeMinified]{}, err
	}
	return mapPage(rows, minified), nil
}

func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (types.RecipeMinified, error) {
	return toggleOn(ctx, s, s.favorites, userID, recipeID)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return toggleOff(ctx, s, s.favorites, userID, recipeID)
}

func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uint) (types.RecipeMinified, error) {
	return toggleOn(ctx, s, s.cart, userID, recipeID)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return toggleOff(ctx, s, s.cart, userID, recipeID)
}

func toggleOn[T any](ctx context.Context, s *RecipeService, store *MembershipStore[T], userID, recipeID uint) (types.RecipeMinified, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return types.RecipeMinified{}, err
	}
	if err := store.Add(ctx, userID, recipe.ID); err != nil {
		return types.RecipeMinified{}, err
	}
	return minified(recipe), nil
}

func toggleOff[T any](ctx context.Context, s *RecipeService, store *MembershipStore[T], userID, recipeID uint) error {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return err
	}
	return store.Remove(ctx, userID, recipe.ID)
}

func (s *RecipeService) find(ctx context.Context, recipeID uint) (models.Recipe, error) {
	return first[models.Recipe](ctx, s.db, "recipe", recipeID)
}

// owned loads a recipe and checks that userID wrote it
func (s *RecipeService) owned(ctx context.Context, userID, recipeID uint) (models.Recipe, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return recipe, err
	}
	if recipe.AuthorID != userID {
		return recipe, ErrForbidden
	}
	return recipe, nil
}

// validate checks a recipe payload, returning the first rule it breaks.
// Scalar fields come first, then the ingredient list, then the tag list.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeRequest, creating bool) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return ErrNameRequired
	case utf8.RuneCountInString(req.Name) > models.RecipeNameMaxLength:
		return ErrNameTooLong
	case strings.TrimSpace(req.Text) == "":
		return ErrTextRequired
	case utf8.RuneCountInString(req.Text) > models.RecipeTextMaxLength:
		return ErrTextTooLong
	case req.CookingTime < models.CookingTimeMin || req.CookingTime > models.CookingTimeMax:
		return ErrCookingTimeRange
	case creating && req.Image == "":
		return ErrImageRequired
	}

	if len(req.Ingredients) == 0 {
		return ErrNoIngredients
	}
	ingredientIDs := make([]uint, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if item.Amount < models.AmountMin {
			return ErrAmountTooSmall
		}
		ingredientIDs = append(ingredientIDs, item.ID)
	}
	if hasDuplicates(ingredientIDs) {
		return ErrDuplicateIngredients
	}
	if err := s.allExist(ctx, &models.Ingredient{}, ingredientIDs, ErrUnknownIngredient); err != nil {
		return err
	}

	if len(req.Tags) == 0 {
		return ErrNoTags
	}
	if hasDuplicates(req.Tags) {
		return ErrDuplicateTags
	}
	return s.allExist(ctx, &models.Tag{}, req.Tags, ErrUnknownTag)
}

// allExist fails with missing unless every id (already distinct) has a row
func (s *RecipeService) allExist(ctx context.Context, model interface{}, ids []uint, missing error) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up ids: %w", err)
	}
	if count != int64(len(ids)) {
		return missing
	}
	return nil
}

// tagSlugsExist fails with ErrUnknownTagFilter unless every slug names a tag
func (s *RecipeService) tagSlugsExist(ctx context.Context, slugs []string) error {
	distinct := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		distinct[slug] = struct{}{}
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("slug IN ?", slugs).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up tags: %w", err)
	}
	if count != int64(len(distinct)) {
		return ErrUnknownTagFilter
	}
	return nil
}

func hasDuplicates(ids []uint) bool {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// replaceRecipeLinks bulk-inserts the ingredient amounts and tag links of a
// recipe that currently has none.
func replaceRecipeLinks(tx *gorm.DB, recipeID uint, req *types.RecipeRequest) error {
	ingredients := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredients = append(ingredients, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&ingredients).Error; err != nil {
		return fmt.Errorf("failed to add recipe ingredients: %w", err)
	}

	tags := make([]models.RecipeTag, 0, len(req.Tags))
	for _, tagID := range req.Tags {
		tags = append(tags, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	if err := tx.Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to add recipe tags: %w", err)
	}
	return nil
}
