package handler

import (
	"errors"
	"net/http"
	"strconv"

	"aircatalog/internal/paginate"
	"aircatalog/internal/service"
	"aircatalog/internal/sources"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CityHandler interface {
	ListCities(c *gin.Context)
}

type cityHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewCityHandler(catalog service.CatalogService, logger *zap.Logger) CityHandler {
	return &cityHandler{catalog: catalog, logger: logger}
}

// ListCities handles GET /api/cities
// Query parameters:
// - country: required, ISO code or display name
// - page, limit: pagination (defaults 1 and 20)
// - search: optional case-insensitive name filter
// - include_blocked: include cities suppressed by reputation flags
func (h *cityHandler) ListCities(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country parameter is required"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}

	params := service.ListParams{
		Country:        country,
		Page:           page,
		PageSize:       limit,
		Search:         c.Query("search"),
		IncludeBlocked: c.Query("include_blocked") == "true",
	}

	result, err := h.catalog.ListCities(c.Request.Context(), params)
	if err != nil {
		h.respondListError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total_count": result.TotalCount,
		"page":        result.Page,
		"page_size":   result.PageSize,
	})
}

func (h *cityHandler) respondListError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCountryNotSupported),
		errors.Is(err, paginate.ErrInvalidPage),
		errors.Is(err, paginate.ErrInvalidPageSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sources.ErrAllSourcesFailed):
		h.logger.Error("All upstream sources failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "city data is temporarily unavailable"})
	default:
		h.logger.Error("Failed to list cities", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve cities"})
	}
}
