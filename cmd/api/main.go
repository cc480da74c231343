package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fundflow-africa/donations-backend/internal/config"
	"fundflow-africa/donations-backend/internal/funds"
	"fundflow-africa/donations-backend/internal/impact"
	"fundflow-africa/donations-backend/internal/notifications"
	"fundflow-africa/donations-backend/internal/notifications/websocket"
	"fundflow-africa/donations-backend/internal/payments"
	"fundflow-africa/donations-backend/internal/projects"
	"fundflow-africa/donations-backend/internal/search"
	"fundflow-africa/donations-backend/internal/validation"
	"fundflow-africa/donations-backend/pkg/pdf"
	"fundflow-africa/donations-backend/pkg/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName))
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// Notifications use GORM over the same database
	gormDB, err := gorm.Open(gormpostgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to open gorm connection", zap.Error(err))
	}

	ctx := context.Background()

	// Object storage (validation photos, donation receipts)
	var store storage.ObjectStore
	if s3Store, err := storage.NewS3Store(ctx, cfg.Storage.AWSRegion); err != nil {
		logger.Warn("Object storage unavailable, photo checks and receipts disabled", zap.Error(err))
	} else {
		store = s3Store
	}

	// Notification channels
	wsManager := websocket.NewManager(logger)
	var smsClient notifications.SMSClient
	var emailClient notifications.EmailClient
	if awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Notifications.AWSRegion)); err != nil {
		logger.Warn("AWS config unavailable, SMS and email channels disabled", zap.Error(err))
	} else {
		smsClient = sns.NewFromConfig(awsCfg)
		emailClient = sesv2.NewFromConfig(awsCfg)
	}
	notifier, err := notifications.NewService(gormDB, wsManager, smsClient, emailClient, notifications.ServiceConfig{
		SenderEmail:  cfg.Notifications.SenderEmail,
		SMSEnabled:   cfg.Notifications.SMSEnabled,
		EmailEnabled: cfg.Notifications.EmailEnabled,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}
	defer notifier.Close()

	// Project search index (best effort)
	var indexer projects.Indexer
	var searchHandler *search.Handler
	if cfg.Search.Enabled && len(cfg.Search.Addresses) > 0 {
		esIndexer, err := search.NewIndexer(cfg.Search.Addresses, cfg.Search.Index, logger)
		if err != nil {
			logger.Warn("Search index unavailable", zap.Error(err))
		} else {
			indexer = esIndexer
			searchHandler = search.NewHandler(esIndexer, logger)
		}
	}

	// Projects
	projectRepo := projects.NewPostgresRepository(db)
	projectService := projects.NewService(projectRepo, indexer, logger)
	projectHandler := projects.NewHandler(projectService, logger)

	// Impact metrics
	impactRepo := impact.NewPostgresRepository(db)
	aggregator := impact.NewAggregator(impactRepo, logger)
	impactHandler := impact.NewHandler(aggregator, impact.NewExcelExporter(), logger)

	// Validation and settlement
	validationRepo := validation.NewPostgresRepository(db)
	releaser := funds.NewHTTPReleaser(cfg.FundRelease.Endpoint, cfg.FundRelease.Timeout, logger)
	settlement := validation.NewSettlement(validationRepo, projectRepo, releaser, notifier, cfg.FundRelease.Timeout, logger)
	var photoChecker validation.PhotoChecker
	if store != nil {
		photoChecker = validation.NewLivenessChecker(store, cfg.Storage.PhotoBucket, logger)
	}
	intake := validation.NewIntake(validationRepo, projectRepo, settlement, photoChecker, notifier, validation.IntakeConfig{
		Policy: validation.Policy{
			RequiredValidations:      cfg.Consensus.RequiredValidations,
			ApprovalThreshold:        cfg.Consensus.ApprovalThreshold,
			AutoRejectBelowThreshold: cfg.Consensus.AutoRejectBelowThreshold,
		},
		AllowDuplicateValidatorVotes: cfg.Consensus.AllowDuplicateValidatorVotes,
	}, logger)
	validationHandler := validation.NewHandler(intake, logger)

	// Payments
	paymentRepo := payments.NewPostgresRepository(db)
	paymentService := payments.NewService(
		paymentRepo,
		projectRepo,
		aggregator,
		pdf.NewReceiptGenerator(pdf.DefaultReceiptOptions()),
		store,
		cfg.Storage.ReceiptBucket,
		notifier,
		logger,
	)
	ingress := payments.NewIngress(paymentService,
		cfg.Payments.StripeWebhookSecret,
		cfg.Payments.MobileMoneyWebhookSecret,
		cfg.Payments.SignatureTolerance,
		logger)
	reconciler := payments.NewReconciler(paymentRepo, logger)
	paymentHandler := payments.NewHandler(paymentService, ingress, reconciler, logger)

	// Setup Router
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		projectHandler.RegisterRoutes(api)
		validationHandler.RegisterRoutes(api)
		paymentHandler.RegisterRoutes(api)
		impactHandler.RegisterRoutes(api)
		notifications.NewHandler(notifier, logger).RegisterRoutes(api)
		if searchHandler != nil {
			searchHandler.RegisterRoutes(api)
		}
	}

	// Live event stream for dashboards
	router.GET("/ws", func(c *gin.Context) {
		if _, err := wsManager.HandleConnection(c.Writer, c.Request); err != nil {
			logger.Warn("Websocket upgrade failed", zap.Error(err))
		}
	})

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}
