package handler

import (
	"errors"
	"net/http"

	"aircatalog/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler interface {
	InvalidateCache(c *gin.Context)
	CacheStats(c *gin.Context)
}

type adminHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewAdminHandler(catalog service.CatalogService, logger *zap.Logger) AdminHandler {
	return &adminHandler{catalog: catalog, logger: logger}
}

type invalidateRequest struct {
	Scope string `json:"scope"`
}

// InvalidateCache handles POST /api/cache/invalidate
func (h *adminHandler) InvalidateCache(c *gin.Context) {
	var req invalidateRequest
	// Scope is optional; an empty or missing body clears everything.
	_ = c.ShouldBindJSON(&req)

	removed, err := h.catalog.InvalidateCache(req.Scope)
	if err != nil {
		if errors.Is(err, service.ErrUnknownCacheScope) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to invalidate cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate cache"})
		return
	}

	h.logger.Info("Cache invalidated", zap.String("scope", req.Scope), zap.Int("removed", removed))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// CacheStats handles GET /api/cache/stats
func (h *adminHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.CacheStats())
}
