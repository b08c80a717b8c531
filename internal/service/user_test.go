package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodshare/backend/internal/logging"
	"github.com/pageza/foodshare/backend/internal/models"
	"github.com/pageza/foodshare/backend/internal/service"
	"github.com/pageza/foodshare/backend/internal/testhelpers"
	"github.com/pageza/foodshare/backend/internal/types"
)

func setupUserTest(t *testing.T) (*gorm.DB, *service.UserService) {
	db := testhelpers.SetupTestDatabase(t)
	return db, service.NewUserService(db, logging.Discard())
}

func TestRegister(t *testing.T) {
	db, svc := setupUserTest(t)
	ctx := context.Background()

	req := &types.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook",
		FirstName: "Jamie",
		LastName:  "Oliver",
		Password:  "longenough",
	}
	created, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "cook", created.Username)

	var user models.User
	require.NoError(t, db.First(&user, created.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")))

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	req.Email = "other@example.com"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestSetPassword(t *testing.T) {
	db, svc := setupUserTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "cook")

	err := svc.SetPassword(ctx, user.ID, &types.SetPasswordRequest{CurrentPassword: "wrong", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, service.ErrWrongPassword)

	err = svc.SetPassword(ctx, user.ID, &types.SetPasswordRequest{CurrentPassword: testhelpers.TestPassword, NewPassword: "brand-new-pass"})
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reloaded.PasswordHash), []byte("brand-new-pass")))
}

func TestSelfSubscriptionAlwaysFails(t *testing.T) {
	db, svc := setupUserTest(t)
	ctx := context.Background()
	user := testhelpers.CreateTestUser(t, db, "cook")

	_, err := svc.Subscribe(ctx, user.ID, user.ID, 3)
	assert.ErrorIs(t, err, service.ErrSelfSubscription)

	// Even a row that slipped in some other way does not change the answer
	require.NoError(t, db.Create(&models.Subscription{UserID: user.ID, AuthorID: user.ID}).Error)
	_, err = svc.Subscribe(ctx, user.ID, user.ID, 3)
	assert.ErrorIs(t, err, service.ErrSelfSubscription)
}

func TestSubscribeToggle(t *testing.T) {
	db, svc := setupUserTest(t)
	ctx := context.Background()
	reader := testhelpers.CreateTestUser(t, db, "reader")
	author := testhelpers.CreateTestUser(t, db, "author")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")
	for i := 0; i < 4; i++ {
		testhelpers.CreateRecipe(t, db, author, "Recipe", []testhelpers.Line{{Ingredient: eggs, Amount: 1}})
	}

	view, err := svc.Subscribe(ctx, reader.ID, author.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, author.ID, view.ID)
	assert.True(t, view.IsSubscribed)
	assert.EqualValues(t, 4, view.RecipesCount)
	assert.Len(t, view.Recipes, 2)

	_, err = svc.Subscribe(ctx, reader.ID, author.ID, 2)
	assert.ErrorIs(t, err, service.ErrAlreadySubscribed)

	got, err := svc.Get(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSubscribed)

	require.NoError(t, svc.Unsubscribe(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, svc.Unsubscribe(ctx, reader.ID, author.ID), service.ErrNotSubscribed)

	_, err = svc.Subscribe(ctx, reader.ID, 9999, 2)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSubscriptionsNewestFirst(t *testing.T) {
	db, svc := setupUserTest(t)
	ctx := context.Background()
	reader := testhelpers.CreateTestUser(t, db, "reader")
	first := testhelpers.CreateTestUser(t, db, "first")
	second := testhelpers.CreateTestUser(t, db, "second")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")
	testhelpers.CreateRecipe(t, db, first, "Omelette", []testhelpers.Line{{Ingredient: eggs, Amount: 2}})

	_, err := svc.Subscribe(ctx, reader.ID, first.ID, 3)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, reader.ID, second.ID, 3)
	require.NoError(t, err)

	page, err := svc.Subscriptions(ctx, reader.ID, types.PageRequest{Page: 1, Limit: 10}, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, second.ID, page.Results[0].ID)
	assert.Equal(t, first.ID, page.Results[1].ID)
	assert.EqualValues(t, 1, page.Results[1].RecipesCount)
	require.Len(t, page.Results[1].Recipes, 1)
	assert.Equal(t, "Omelette", page.Results[1].Recipes[0].Name)
	assert.Empty(t, page.Results[0].Recipes)
}

func TestListUsers(t *testing.T) {
	db, svc := setupUserTest(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		testhelpers.CreateTestUser(t, db, name)
	}

	page, err := svc.List(ctx, 0, types.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "c", page.Results[0].Username)

	_, err = svc.Get(ctx, 9999, 0)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
