package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
)

// CatalogHandler read-only passthroughs to the core API for the data
// the wizard screens need
type CatalogHandler struct {
	backend *backend.Client
}

// NewCatalogHandler creates the catalog handler
func NewCatalogHandler(client *backend.Client) *CatalogHandler {
	return &CatalogHandler{backend: client}
}

// Countries lists countries with calling codes for the phone selector
func (h *CatalogHandler) Countries(c *gin.Context) {
	language := c.DefaultQuery("language", "fr")
	countries, err := h.backend.Countries(c.Request.Context(), language)
	if err != nil {
		FlowError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "countries", countries)
}

// ListPools lists public pools
func (h *CatalogHandler) ListPools(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	pools, err := h.backend.ListPools(c.Request.Context(), limit, page)
	if err != nil {
		FlowError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "pools", gin.H{
		"items":      pools,
		"pagination": Pagination{Page: page, Limit: limit},
	})
}

// GetPool fetches one pool
func (h *CatalogHandler) GetPool(c *gin.Context) {
	pool, err := h.backend.GetPool(c.Request.Context(), c.Param("id"))
	if err != nil {
		FlowError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "pool", pool)
}

// PoolContributions lists a pool's contributors
func (h *CatalogHandler) PoolContributions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	contributions, err := h.backend.PoolContributions(c.Request.Context(), c.Param("id"), limit, page)
	if err != nil {
		FlowError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "contributions", gin.H{
		"items":      contributions,
		"pagination": Pagination{Page: page, Limit: limit},
	})
}
