package server

import (
	"net/http"

	"aircatalog/internal/handler"
	"aircatalog/internal/middleware"
	"aircatalog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewServer(catalog service.CatalogService, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router:  router,
		catalog: catalog,
		logger:  logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	cityHandler := handler.NewCityHandler(s.catalog, s.logger)
	reputationHandler := handler.NewReputationHandler(s.catalog, s.logger)
	adminHandler := handler.NewAdminHandler(s.catalog, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.Use(middleware.CORS())
	{
		api.GET("/cities", cityHandler.ListCities)
		api.POST("/cities/report", reputationHandler.FlagCity)
		api.GET("/reports", reputationHandler.ListFlagged)
		api.DELETE("/reports/:country/:city", reputationHandler.UnflagCity)
		api.POST("/cache/invalidate", adminHandler.InvalidateCache)
		api.GET("/cache/stats", adminHandler.CacheStats)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
