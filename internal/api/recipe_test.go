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

func TestCreateRecipeEndpoint(t *testing.T) {
	a := setupAPITest(t)
	author := testhelpers.CreateTestUser(t, a.db, "author")
	flour := testhelpers.CreateIngredient(t, a.db, "flour", "g")
	lunch := testhelpers.CreateTag(t, a.db, "lunch")

	body := map[string]interface{}{
		"name":         "Bread",
		"text":         "Knead and bake.",
		"cooking_time": 60,
		"image":        "data:image/png;base64,aGVsbG8=",
		"ingredients":  []map[string]interface{}{{"id": flour.ID, "amount": 500}},
		"tags":         []uint{lunch.ID},
	}

	t.Run("requires authentication", func(t *testing.T) {
		rr := a.do(http.MethodPost, "/api/recipes", nil, body)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("creates", func(t *testing.T) {
		rr := a.do(http.MethodPost, "/api/recipes", &author, body)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		recipe := decode[types.RecipeView](t, rr)
		assert.Equal(t, "Bread", recipe.Name)
		assert.Equal(t, "http://cdn.example.com/recipes/images/uploaded.png", recipe.Image)
		assert.Equal(t, "author", recipe.Author.Username)
		require.Len(t, recipe.Ingredients, 1)
		assert.Equal(t, 500, recipe.Ingredients[0].Amount)
	})

	t.Run("rejects empty ingredients", func(t *testing.T) {
		bad := map[string]interface{}{}
		for k, v := range body {
			bad[k] = v
		}
		bad["ingredients"] = []interface{}{}

		rr := a.do(http.MethodPost, "/api/recipes", &author, bad)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"errors":"must provide at least one ingredient"}`, rr.Body.String())
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		rr := a.do(http.MethodPost, "/api/recipes", &author, "not an object")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRecipeOwnership(t *testing.T) {
	a := setupAPITest(t)
	author := testhelpers.CreateTestUser(t, a.db, "author")
	stranger := testhelpers.CreateTestUser(t, a.db, "stranger")
	eggs := testhelpers.CreateIngredient(t, a.db, "eggs", "pcs")
	lunch := testhelpers.CreateTag(t, a.db, "lunch")
	recipe := testhelpers.CreateRecipe(t, a.db, author, "Omelette", []testhelpers.Line{{Ingredient: eggs, Amount: 2}}, lunch)
	path := fmt.Sprintf("/api/recipes/%d", recipe.ID)

	update := map[string]interface{}{
		"name":         "Big omelette",
		"text":         "More eggs.",
		"cooking_time": 5,
		"ingredients":  []map[string]interface{}{{"id": eggs.ID, "amount": 4}},
		"tags":         []uint{lunch.ID},
	}

	rr := a.do(http.MethodPatch, path, &stranger, update)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = a.do(http.MethodDelete, path, &stranger, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = a.do(http.MethodPatch, path, &author, update)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[types.RecipeView](t, rr)
	assert.Equal(t, "Big omelette", updated.Name)
	assert.Equal(t, recipe.Image, updated.Image)
	assert.Equal(t, 4, updated.Ingredients[0].Amount)

	rr = a.do(http.MethodPut, path, &author, update)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(http.MethodDelete, path, &author, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(http.MethodGet, "/api/recipes/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListRecipesPagination(t *testing.T) {
	a := setupAPITest(t)
	author := testhelpers.CreateTestUser(t, a.db, "author")
	eggs := testhelpers.CreateIngredient(t, a.db, "eggs", "pcs")
	for i := 0; i < 5; i++ {
		testhelpers.CreateRecipe(t, a.db, author, fmt.Sprintf("Recipe %d", i), []testhelpers.Line{{Ingredient: eggs, Amount: 1}})
	}

	rr := a.do(http.MethodGet, "/api/recipes?limit=2", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[api.PageResponse[types.RecipeView]](t, rr)
	assert.EqualValues(t, 5, page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/recipes?limit=2&page=2", *page.Next)
	assert.Nil(t, page.Previous)

	rr = a.do(http.MethodGet, "/api/recipes?limit=2&page=3", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[api.PageResponse[types.RecipeView]](t, rr)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/recipes?limit=2&page=2", *page.Previous)

	rr = a.do(http.MethodGet, "/api/recipes?limit=2&page=4", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"errors":"invalid page"}`, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/recipes?tags=no-such-tag", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"errors":"select a valid tag"}`, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/recipes?page=first", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(http.MethodGet, "/api/recipes?limit=zero", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[api.PageResponse[types.RecipeView]](t, rr)
	assert.Len(t, page.Results, 5, "invalid limit falls back to the default page size")
}

func TestFavoriteAndCartEndpoints(t *testing.T) {
	a := setupAPITest(t)
	author := testhelpers.CreateTestUser(t, a.db, "author")
	reader := testhelpers.CreateTestUser(t, a.db, "reader")
	flour := testhelpers.CreateIngredient(t, a.db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, a.db, "sugar", "g")
	r1 := testhelpers.CreateRecipe(t, a.db, author, "Bread", []testhelpers.Line{{Ingredient: flour, Amount: 200}})
	r2 := testhelpers.CreateRecipe(t, a.db, author, "Cake", []testhelpers.Line{
		{Ingredient: flour, Amount: 100},
		{Ingredient: sugar, Amount: 50},
	})

	favorite := fmt.Sprintf("/api/recipes/%d/favorite", r1.ID)
	rr := a.do(http.MethodPost, favorite, &reader, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, types.RecipeMinified{ID: r1.ID, Name: "Bread", Image: r1.Image, CookingTime: 10}, decode[types.RecipeMinified](t, rr))

	rr = a.do(http.MethodPost, favorite, &reader, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"errors":"the recipe is already added"}`, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/recipes?is_favorited=1", &reader, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	favorites := decode[api.PageResponse[types.RecipeView]](t, rr)
	require.Len(t, favorites.Results, 1)
	assert.True(t, favorites.Results[0].IsFavorited)

	rr = a.do(http.MethodDelete, favorite, &reader, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = a.do(http.MethodDelete, favorite, &reader, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"errors":"the recipe is not in the list"}`, rr.Body.String())

	rr = a.do(http.MethodPost, "/api/recipes/9999/favorite", &reader, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	for _, r := range []uint{r1.ID, r2.ID} {
		rr = a.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", r), &reader, nil)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr = a.do(http.MethodGet, "/api/recipes/cart", &reader, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cart := decode[api.PageResponse[types.RecipeMinified]](t, rr)
	assert.EqualValues(t, 2, cart.Count)

	rr = a.do(http.MethodGet, "/api/recipes/download_shopping_cart", &reader, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "1. flour (g) — 300\n2. sugar (g) — 50\n", rr.Body.String())

	rr = a.do(http.MethodGet, "/api/recipes/download_shopping_cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
