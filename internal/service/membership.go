package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/models"
)

// MembershipStore toggles (owner, target) join rows of type T. Favorites,
// shopping cart entries and subscriptions are all the same shape: a user_id
// column, a target column and a unique index over both.
type MembershipStore[T any] struct {
	db           *gorm.DB
	targetColumn string
	newRow       func(owner, target uint) *T
	errExists    error
	errMissing   error
}

func NewFavoriteStore(db *gorm.DB) *MembershipStore[models.Favorite] {
	return &MembershipStore[models.Favorite]{
		db:           db,
		targetColumn: "recipe_id",
		newRow: func(owner, target uint) *models.Favorite {
			return &models.Favorite{UserID: owner, RecipeID: target}
		},
		errExists:  ErrRecipeAlreadyAdded,
		errMissing: ErrRecipeNotInList,
	}
}

func NewCartStore(db *gorm.DB) *MembershipStore[models.ShoppingCartEntry] {
	return &MembershipStore[models.ShoppingCartEntry]{
		db:           db,
		targetColumn: "recipe_id",
		newRow: func(owner, target uint) *models.ShoppingCartEntry {
			return &models.ShoppingCartEntry{UserID: owner, RecipeID: target}
		},
		errExists:  ErrRecipeAlreadyAdded,
		errMissing: ErrRecipeNotInList,
	}
}

func NewSubscriptionStore(db *gorm.DB) *MembershipStore[models.Subscription] {
	return &MembershipStore[models.Subscription]{
		db:           db,
		targetColumn: "author_id",
		newRow: func(owner, target uint) *models.Subscription {
			return &models.Subscription{UserID: owner, AuthorID: target}
		},
		errExists:  ErrAlreadySubscribed,
		errMissing: ErrNotSubscribed,
	}
}

func (s *MembershipStore[T]) where(ctx context.Context, owner, target uint) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ? AND "+s.targetColumn+" = ?", owner, target)
}

// Exists reports whether owner is linked to target
func (s *MembershipStore[T]) Exists(ctx context.Context, owner, target uint) (bool, error) {
	var count int64
	if err := s.where(ctx, owner, target).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// Add links owner to target, failing with the store's "exists" error when
// the row is already present.
func (s *MembershipStore[T]) Add(ctx context.Context, owner, target uint) error {
	exists, err := s.Exists(ctx, owner, target)
	if err != nil {
		return err
	}
	if exists {
		return s.errExists
	}
	if err := s.db.WithContext(ctx).Create(s.newRow(owner, target)).Error; err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}
	return nil
}

// Remove unlinks owner from target, failing with the store's "missing"
// error when there was nothing to remove.
func (s *MembershipStore[T]) Remove(ctx context.Context, owner, target uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND "+s.targetColumn+" = ?", owner, target).
		Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("failed to remove membership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.errMissing
	}
	return nil
}

// Targets returns which of targets owner is linked to. An anonymous owner
// (0) is linked to nothing.
func (s *MembershipStore[T]) Targets(ctx context.Context, owner uint, targets []uint) (map[uint]bool, error) {
	linked := make(map[uint]bool, len(targets))
	if owner == 0 || len(targets) == 0 {
		return linked, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ? AND "+s.targetColumn+" IN ?", owner, targets).
		Pluck(s.targetColumn, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}
	for _, id := range ids {
		linked[id] = true
	}
	return linked, nil
}

// OwnerSubquery selects the target ids linked to owner, for use in
// "id IN (?)" filters.
func (s *MembershipStore[T]) OwnerSubquery(owner uint) *gorm.DB {
	return s.db.Model(new(T)).Select(s.targetColumn).Where("user_id = ?", owner)
}
