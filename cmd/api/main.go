package main

import (
	"fmt"
	"net/http"
	"os"

	"khata/internal/classify"
	"khata/internal/config"
	"khata/internal/database"
	"khata/internal/handlers"
	"khata/internal/logger"
	"khata/internal/merchant"
	"khata/internal/middleware"
	"khata/internal/services"
	"khata/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Load merchant lookup data. Missing files degrade to empty lookups so a
	// bare checkout still serves classification.
	dict, err := merchant.LoadDictionary(appConfig.MerchantDictPath)
	if err != nil {
		log.Warnf("merchant dictionary unavailable (%v), using empty dictionary", err)
		dict = merchant.NewDictionary(nil)
	}
	handles, err := merchant.LoadHandles(appConfig.UPIHandlesPath)
	if err != nil {
		log.Warnf("UPI handle list unavailable (%v), using empty set", err)
		handles = merchant.NewHandleSet(nil)
	}

	// Initialize services
	db := dbManager.DB()
	classifier := classify.New(handles)
	normalizer := merchant.NewNormalizer(dict)
	ingestionService := services.NewIngestionService(db, classifier, normalizer)
	ledgerService := services.NewLedgerService(db)
	dedupService := services.NewDedupService(db)

	// Initialize handlers
	messageHandler := handlers.NewMessageHandler(ingestionService, appConfig.TraceDir, appConfig.TraceDebug)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, dedupService)
	traceHandler := handlers.NewTraceHandler(appConfig.TraceDir)

	// Register custom request validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Ingestion routes (API-key protected)
	messages := v1.Group("/messages")
	messages.Use(middleware.IngestAuthMiddleware(appConfig.IngestAPIKey))
	messages.POST("/classify", messageHandler.ClassifyMessage)
	messages.POST("/scan", messageHandler.ScanMessages)

	// Ledger routes
	ledger := v1.Group("/ledger")
	ledger.GET("/entries", ledgerHandler.ListEntries)
	ledger.GET("/entries/:id", ledgerHandler.GetEntryByID)
	ledger.DELETE("/entries/:id", ledgerHandler.DeleteEntry)
	ledger.POST("/entries/:id/override", ledgerHandler.OverrideEntry)
	ledger.POST("/repair", ledgerHandler.RepairLedger)

	// Trace routes
	traces := v1.Group("/traces")
	traces.GET("", traceHandler.ListTraceFiles)
	traces.GET("/export", traceHandler.ExportTraces)

	log.Infof("Starting khata server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
