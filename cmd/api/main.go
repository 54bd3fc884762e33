package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ledger-recon-engine/docs"
	"ledger-recon-engine/internal/config"
	"ledger-recon-engine/internal/handler"
	"ledger-recon-engine/internal/middleware"
	"ledger-recon-engine/internal/repository"
	"ledger-recon-engine/internal/service"
	"ledger-recon-engine/pkg/logger"
)

// @title Ledger Reconciliation API
// @version 1.0
// @description API for reconciling bank statements against ledger entries
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@ledger-recon-engine.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel)
	logger.GetLogger().Info("Starting Ledger Reconciliation Service")

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	logger.GetLogger().Info("Database connection established")

	txRepo := repository.NewTransactionRepository(db)
	reconRepo := repository.NewReconciliationRepository(db, txRepo)

	ingestService := service.NewIngestService()
	reconService := service.NewReconciliationService(txRepo, reconRepo, ingestService, cfg.App.BatchSize)

	txHandler := handler.NewTransactionHandler(ingestService, cfg.App.BatchSize)
	reconHandler := handler.NewReconciliationHandler(reconService)

	router := setupRouter(txHandler, reconHandler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.GetLogger().WithField("address", addr).Info("Server starting")

	if err := router.Run(addr); err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to start server")
	}
}

func connectDB(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func setupRouter(txHandler *handler.TransactionHandler, reconHandler *handler.ReconciliationHandler) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		transactions := v1.Group("/transactions")
		{
			transactions.POST("/parse", txHandler.ParseTransactions)
		}

		reconciliation := v1.Group("/reconcile")
		{
			reconciliation.POST("", reconHandler.Reconcile)
			reconciliation.GET("/jobs/:job_id", reconHandler.GetJobStatus)
			reconciliation.GET("/jobs/:job_id/summary", reconHandler.GetJobSummary)
		}
	}

	return router
}
