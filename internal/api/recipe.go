package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodshare/backend/internal/metrics"
	"github.com/pageza/foodshare/backend/internal/middleware"
	"github.com/pageza/foodshare/backend/internal/service"
	"github.com/pageza/foodshare/backend/internal/types"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	authService   *service.AuthService
	limiter       *middleware.RateLimiter
	metrics       *metrics.Metrics
	log           *logrus.Logger
	pageSize      int
}

func NewRecipeHandler(recipeService *service.RecipeService, authService *service.AuthService, deps Dependencies) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		authService:   authService,
		limiter:       deps.RateLimiter,
		metrics:       deps.Metrics,
		log:           deps.Log,
		pageSize:      deps.Config.RecipesPageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.RequireAuth(h.authService)
	optionalAuth := middleware.OptionalAuth(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.POST("", requireAuth, h.limiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.GET("/cart", requireAuth, h.Cart)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.PATCH("/:id", requireAuth, h.UpdateRecipe)
		recipes.PUT("/:id", requireAuth, h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", requireAuth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", requireAuth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "author must be a user id")
			return
		}
		filter.AuthorID = uint(author)
	}

	req := parsePage(c, h.pageSize)
	page, err := h.recipeService.List(c.Request.Context(), viewerID(c), filter, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writePage(c, req, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), viewerID(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.metrics.RecipeWritten("create")
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), viewerID(c), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.metrics.RecipeWritten("update")
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), viewerID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.metrics.RecipeWritten("delete")
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.toggleOn(c, "favorite", h.recipeService.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.toggleOff(c, "favorite", h.recipeService.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.toggleOn(c, "shopping_cart", h.recipeService.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.toggleOff(c, "shopping_cart", h.recipeService.RemoveFromCart)
}

type addFunc func(ctx context.Context, userID, recipeID uint) (types.RecipeMinified, error)
type removeFunc func(ctx context.Context, userID, recipeID uint) error

func (h *RecipeHandler) toggleOn(c *gin.Context, kind string, add addFunc) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	recipe, err := add(c.Request.Context(), viewerID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.metrics.Membership(kind, "add")
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) toggleOff(c *gin.Context, kind string, remove removeFunc) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	if err := remove(c.Request.Context(), viewerID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.metrics.Membership(kind, "remove")
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Cart(c *gin.Context) {
	req := parsePage(c, h.pageSize)
	page, err := h.recipeService.Cart(c.Request.Context(), viewerID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writePage(c, req, page)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	lines, err := h.recipeService.ShoppingList(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ShoppingLists.Inc()
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(lines)))
}

// queryFlag treats "1" and "true" as set
func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
