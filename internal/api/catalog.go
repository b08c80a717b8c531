package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/foodshare/backend/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	log            *logrus.Logger
	pageSize       int
}

func NewCatalogHandler(catalogService *service.CatalogService, deps Dependencies) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		log:            deps.Log,
		pageSize:       deps.Config.CatalogPageSize,
	}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	req := parsePage(c, h.pageSize)
	page, err := h.catalogService.ListIngredients(c.Request.Context(), c.Query("name"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writePage(c, req, page)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	ingredient, err := h.catalogService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	req := parsePage(c, h.pageSize)
	page, err := h.catalogService.ListTags(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	writePage(c, req, page)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		notFound(c)
		return
	}

	tag, err := h.catalogService.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}
