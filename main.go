package main

import (
	"go.uber.org/zap"

	"aircatalog/internal/cache"
	"aircatalog/internal/config"
	"aircatalog/internal/enrichment"
	"aircatalog/internal/history"
	"aircatalog/internal/legacyapi"
	"aircatalog/internal/liveapi"
	"aircatalog/internal/models"
	"aircatalog/internal/places"
	"aircatalog/internal/repository"
	"aircatalog/internal/server"
	"aircatalog/internal/service"
	"aircatalog/internal/sources"
	"aircatalog/internal/textlookup"
	"aircatalog/internal/validator"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Shared cache and its typed namespaces
	store := cache.New()
	validationCache := cache.NewNamespace(store, "validation", cache.ValidationTTL)
	descriptionCache := cache.NewNamespace(store, "descriptions", cache.DescriptionTTL)
	sourceCache := cache.NewNamespace(store, "sources", cache.SourceTTL)

	countries := models.NewCountrySet(cfg.Countries)

	// Upstream sources in strict priority order
	historyStore := history.NewStore(db, logger)
	liveClient := liveapi.NewClient(cfg.LiveAPI.URL, cfg.LiveAPI.APIKey, logger)
	legacyClient := legacyapi.NewClient(cfg.LegacyAPI.URL, cfg.LegacyAPI.Username, cfg.LegacyAPI.Password, logger)
	selector := sources.NewSelector(sourceCache, logger, historyStore, liveClient, legacyClient)

	// Lookup clients
	placesClient := places.NewClient(cfg.PlacesAPI.URL, cfg.PlacesAPI.APIKey, logger)
	textClient := textlookup.NewClient(cfg.TextAPI.URL, logger)

	// Pipeline stages
	recordValidator := validator.New(placesClient, validationCache, countries, logger)
	enricher := enrichment.New(textClient, descriptionCache, logger)

	reputationRepo := repository.NewReputationRepository(db, logger)

	catalog := service.NewCatalogService(
		selector,
		recordValidator,
		enricher,
		reputationRepo,
		countries,
		store,
		[]*cache.Namespace{validationCache, descriptionCache, sourceCache},
		logger,
	)

	srv := server.NewServer(catalog, logger)
	srv.Run(cfg.Server.Port)
}
