package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodshare/backend/internal/metrics"
	"github.com/pageza/foodshare/backend/internal/middleware"
	"github.com/pageza/foodshare/backend/internal/service"
	"github.com/pageza/foodshare/backend/internal/types"
)

const defaultRecipesLimit = 3

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
	metrics     *metrics.Metrics
	log         *logrus.Logger
	pageSize    int
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService, deps Dependencies) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		metrics:     deps.Metrics,
		log:         deps.Log,
		pageSize:    deps.Config.UsersPageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.RequireAuth(h.authService)
	optionalAuth := middleware.OptionalAuth(h.authService)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optionalAuth, h.ListUsers)
		users.GET("/me", requireAuth, h.Me)
		users.POST("/set_password", requireAuth, h.SetPassword)
		users.GET("/subscriptions", requireAuth, h.Subscriptions)
		users.GET("/:id", optionalAuth, h.GetUser)
		users.POST("/:id/subscribe", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration: "+err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	req := parsePage(c, h.pageSize)
	page, err := h.userService.List(c.Request.Context(), viewerID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writePage(c, req, page)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	me := viewerID(c)
	user, err := h.userService.Get(c.Request.Context(), me, me)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), viewerID(c), &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	author, err := h.userService.Subscribe(c.Request.Context(), viewerID(c), id, recipesLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.metrics.Membership("subscription", "add")
	c.JSON(http.StatusCreated, author)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), viewerID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.metrics.Membership("subscription", "remove")
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	req := parsePage(c, h.pageSize)
	page, err := h.userService.Subscriptions(c.Request.Context(), viewerID(c), req, recipesLimit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writePage(c, req, page)
}

// recipesLimit reads ?recipes_limit=; anything but plain digits means the
// default.
func recipesLimit(c *gin.Context) int {
	raw := c.Query("recipes_limit")
	for _, r := range raw {
		if r < '0' || r > '9' {
			return defaultRecipesLimit
		}
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return defaultRecipesLimit
	}
	return limit
}
