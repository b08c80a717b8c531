package service

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/types"
)

const catalogCacheSize = 1024

// CatalogService serves the read-only ingredient and tag lists. Single
// entries are cached by id; the catalog is never written through the API.
type CatalogService struct {
	db          *gorm.DB
	ingredients *lru.Cache[uint, models.Ingredient]
	tags        *lru.Cache[uint, models.Tag]
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	// lru.New only fails for a non-positive size
	ingredients, _ := lru.New[uint, models.Ingredient](catalogCacheSize)
	tags, _ := lru.New[uint, models.Tag](catalogCacheSize)
	return &CatalogService{db: db, ingredients: ingredients, tags: tags}
}

// ListIngredients returns ingredients whose name starts with prefix,
// ignoring case, ordered by name.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string, page types.PageRequest) (types.Page[models.Ingredient], error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix != "" {
		q = q.Where(`LOWER(ingredients.name) LIKE ? ESCAPE '\'`, prefixPattern(prefix))
	}
	return paginate[models.Ingredient](q, page, "ingredients.name ASC, ingredients.id ASC")
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (models.Ingredient, error) {
	return cached(ctx, s.db, s.ingredients, "ingredient", id)
}

func (s *CatalogService) ListTags(ctx context.Context, page types.PageRequest) (types.Page[models.Tag], error) {
	q := s.db.WithContext(ctx).Model(&models.Tag{})
	return paginate[models.Tag](q, page, "tags.id ASC")
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (models.Tag, error) {
	return cached(ctx, s.db, s.tags, "tag", id)
}

// cached reads through cache. Misses are not remembered so rows added
// later by an administrator become visible immediately.
func cached[T any](ctx context.Context, db *gorm.DB, cache *lru.Cache[uint, T], resource string, id uint) (T, error) {
	if row, ok := cache.Get(id); ok {
		return row, nil
	}
	row, err := first[T](ctx, db, resource, id)
	if err != nil {
		return row, err
	}
	cache.Add(id, row)
	return row, nil
}

func first[T any](ctx context.Context, db *gorm.DB, resource string, id uint) (T, error) {
	var row T
	err := db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, notFound(resource, id)
	}
	if err != nil {
		return row, fmt.Errorf("failed to load %s: %w", resource, err)
	}
	return row, nil
}
