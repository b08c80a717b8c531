package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodshare/backend/internal/api"
	"github.com/pageza/foodshare/backend/internal/testhelpers"
	"github.com/pageza/foodshare/backend/internal/types"
)

func TestRegisterEndpoint(t *testing.T) {
	a := setupAPITest(t)
	body := map[string]string{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Jamie",
		"last_name":  "Oliver",
		"password":   "longenough",
	}

	rr := a.do(http.MethodPost, "/api/users", nil, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[types.UserCreated](t, rr)
	assert.Equal(t, "cook@example.com", created.Email)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = a.do(http.MethodPost, "/api/users", nil, body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body["email"] = "not-an-email"
	body["username"] = "other"
	rr = a.do(http.MethodPost, "/api/users", nil, body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMeAndSetPassword(t *testing.T) {
	a := setupAPITest(t)
	user := testhelpers.CreateTestUser(t, a.db, "cook")

	rr := a.do(http.MethodGet, "/api/users/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = a.do(http.MethodGet, "/api/users/me", &user, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "cook", decode[types.AuthorView](t, rr).Username)

	rr = a.do(http.MethodPost, "/api/users/set_password", &user, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "another-password",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPost, "/api/users/set_password", &user, map[string]string{
		"current_password": testhelpers.TestPassword,
		"new_password":     "another-password",
	})
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	a := setupAPITest(t)
	reader := testhelpers.CreateTestUser(t, a.db, "reader")
	author := testhelpers.CreateTestUser(t, a.db, "author")
	eggs := testhelpers.CreateIngredient(t, a.db, "eggs", "pcs")
	for i := 0; i < 5; i++ {
		testhelpers.CreateRecipe(t, a.db, author, fmt.Sprintf("Recipe %d", i), []testhelpers.Line{{Ingredient: eggs, Amount: 1}})
	}

	rr := a.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), &reader, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"errors":"cannot subscribe to yourself"}`, rr.Body.String())

	subscribe := fmt.Sprintf("/api/users/%d/subscribe", author.ID)
	rr = a.do(http.MethodPost, subscribe+"?recipes_limit=2", &reader, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	view := decode[types.AuthorWithRecipes](t, rr)
	assert.True(t, view.IsSubscribed)
	assert.EqualValues(t, 5, view.RecipesCount)
	assert.Len(t, view.Recipes, 2)

	rr = a.do(http.MethodPost, subscribe, &reader, nil)
	assert.JSONEq(t, `{"errors":"already subscribed"}`, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=-1", &reader, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[api.PageResponse[types.AuthorWithRecipes]](t, rr)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 3, "non-digit recipes_limit uses the default")

	rr = a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", author.ID), &reader, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[types.AuthorView](t, rr).IsSubscribed)

	rr = a.do(http.MethodDelete, subscribe, &reader, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = a.do(http.MethodDelete, subscribe, &reader, nil)
	assert.JSONEq(t, `{"errors":"not subscribed"}`, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/users", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	users := decode[api.PageResponse[types.AuthorView]](t, rr)
	assert.EqualValues(t, 2, users.Count)
}
