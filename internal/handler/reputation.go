package handler

import (
	"net/http"

	"aircatalog/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReputationHandler interface {
	FlagCity(c *gin.Context)
	ListFlagged(c *gin.Context)
	UnflagCity(c *gin.Context)
}

type reputationHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewReputationHandler(catalog service.CatalogService, logger *zap.Logger) ReputationHandler {
	return &reputationHandler{catalog: catalog, logger: logger}
}

type flagRequest struct {
	City    string `json:"city" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// FlagCity handles POST /api/cities/report
func (h *reputationHandler) FlagCity(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.catalog.FlagCity(req.City, req.Country)
	if err != nil {
		h.logger.Error("Failed to flag city", zap.String("city", req.City), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invalid_count": entry.InvalidCount,
		"is_blocked":    entry.IsBlocked(),
	})
}

// ListFlagged handles GET /api/reports
// Query parameters:
// - country: filter by country code (optional)
// - blocked_only: only entries at/above the blocked threshold
func (h *reputationHandler) ListFlagged(c *gin.Context) {
	entries, err := h.catalog.ListFlagged(c.Query("country"), c.Query("blocked_only") == "true")
	if err != nil {
		h.logger.Error("Failed to list flagged cities", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": entries, "count": len(entries)})
}

// UnflagCity handles DELETE /api/reports/:country/:city
func (h *reputationHandler) UnflagCity(c *gin.Context) {
	city := c.Param("city")
	country := c.Param("country")

	removed, err := h.catalog.UnflagCity(city, country)
	if err != nil {
		h.logger.Error("Failed to unflag city", zap.String("city", city), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove report"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"removed": false, "error": "no report for this city"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}
