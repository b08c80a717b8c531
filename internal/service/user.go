package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/types"
)

type UserService struct {
	db  *gorm.DB
	log *logrus.Logger
	*projector
}

func NewUserService(db *gorm.DB, log *logrus.Logger) *UserService {
	return &UserService{
		db:        db,
		log:       log,
		projector: newProjector(db),
	}
}

// Register creates an account with a bcrypt-hashed password
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (types.UserCreated, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return types.UserCreated{}, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return types.UserCreated{}, ErrEmailTaken
	}
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return types.UserCreated{}, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return types.UserCreated{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return types.UserCreated{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return types.UserCreated{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("User registered")

	return types.UserCreated{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

// Get returns a user as seen by viewer (0 for anonymous)
func (s *UserService) Get(ctx context.Context, userID, viewer uint) (types.AuthorView, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return types.AuthorView{}, err
	}
	views, err := s.authorViews(ctx, viewer, []models.User{user})
	if err != nil {
		return types.AuthorView{}, err
	}
	return views[0], nil
}

// List returns one page of users ordered by id
func (s *UserService) List(ctx context.Context, viewer uint, page types.PageRequest) (types.Page[types.AuthorView], error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	rows, err := paginate[models.User](q, page, "users.id ASC")
	if err != nil {
		return types.Page[types.AuthorView]{}, err
	}
	views, err := s.authorViews(ctx, viewer, rows.Results)
	if err != nil {
		return types.Page[types.AuthorView]{}, err
	}
	return types.Page[types.AuthorView]{Count: rows.Count, Results: views}, nil
}

// SetPassword replaces userID's password after checking the current one
func (s *UserService) SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error {
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", string(hash)).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("Password changed")
	return nil
}

// Subscribe makes userID follow authorID and returns the author with up to
// recipesLimit of their newest recipes.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (types.AuthorWithRecipes, error) {
	if userID == authorID {
		return types.AuthorWithRecipes{}, ErrSelfSubscription
	}
	author, err := s.find(ctx, authorID)
	if err != nil {
		return types.AuthorWithRecipes{}, err
	}
	if err := s.subscriptions.Add(ctx, userID, author.ID); err != nil {
		return types.AuthorWithRecipes{}, err
	}
	return s.withRecipes(ctx, authorView(author, true), recipesLimit)
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	author, err := s.find(ctx, authorID)
	if err != nil {
		return err
	}
	return s.subscriptions.Remove(ctx, userID, author.ID)
}

// Subscriptions returns one page of the authors userID follows, most
// recently followed first.
func (s *UserService) Subscriptions(ctx context.Context, userID uint, page types.PageRequest, recipesLimit int) (types.Page[types.AuthorWithRecipes], error) {
	q := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	selectUsers := func(db *gorm.DB) *gorm.DB {
		return db.Select("users.*")
	}
	rows, err := paginate[models.User](q, page, "subscriptions.created_at DESC, subscriptions.id DESC", selectUsers)
	if err != nil {
		return types.Page[types.AuthorWithRecipes]{}, err
	}

	out := types.Page[types.AuthorWithRecipes]{
		Count:   rows.Count,
		Results: make([]types.AuthorWithRecipes, 0, len(rows.Results)),
	}
	for _, author := range rows.Results {
		view, err := s.withRecipes(ctx, authorView(author, true), recipesLimit)
		if err != nil {
			return types.Page[types.AuthorWithRecipes]{}, err
		}
		out.Results = append(out.Results, view)
	}
	return out, nil
}

func (s *UserService) find(ctx context.Context, userID uint) (models.User, error) {
	return first[models.User](ctx, s.db, "user", userID)
}
