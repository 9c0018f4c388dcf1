package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sphere-events/sphere/internal/clients"
	"github.com/sphere-events/sphere/internal/config"
	"github.com/sphere-events/sphere/internal/database"
	"github.com/sphere-events/sphere/internal/handlers"
	"github.com/sphere-events/sphere/internal/repository"
	"github.com/sphere-events/sphere/internal/rift"
	"github.com/sphere-events/sphere/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	// Open database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database ready", zap.String("path", cfg.Database.Path))

	// Connect to Redis for the exchange-rate cache (optional)
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Error parsing Redis URL", zap.Error(err))
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, exchange-rate caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Connected to Redis", zap.String("url", cfg.Redis.URL))
		}
	}

	// Repositories
	repoLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	users := repository.NewUserRepository(db.DB(), repoLog)
	events := repository.NewEventRepository(db.DB(), repoLog)
	rsvps := repository.NewRSVPRepository(db.DB(), repoLog)
	invoices := repository.NewInvoiceRepository(db.DB(), repoLog)

	// Identity provider: hosted Rift, or the embedded provider for local runs
	var provider rift.Provider
	if cfg.Rift.URL != "" {
		provider = rift.NewClient(cfg.Rift.URL, logger)
		logger.Info("Using hosted Rift provider", zap.String("url", cfg.Rift.URL))
	} else {
		provider = rift.NewLocalProvider(db.DB(), cfg.Rift.JWTSecret, cfg.Rift.JWTExpiry, logger)
		logger.Info("Using embedded identity provider")
	}

	// External service clients
	emailClient := clients.NewEmailClient(cfg.Email.Endpoint, cfg.Email.Token, cfg.Email.SenderName, cfg.Email.SenderEmail, logger)
	paymentClient := clients.NewPaymentClient(cfg.Payment.URL, logger)
	exchangeClient := clients.NewExchangeClient(cfg.Exchange.URL, logger)
	blobClient := clients.NewBlobClient(cfg.Blob.URL, cfg.Blob.Token, logger)

	// Services
	authService := services.NewAuthService(users, provider, logger)
	eventService := services.NewEventService(events, rsvps, users, logger)
	rsvpService := services.NewRSVPService(events, rsvps, invoices, paymentClient, logger)
	ticketService := services.NewTicketService(events, rsvps, invoices, emailClient, logger)
	exchangeService := services.NewExchangeService(exchangeClient, redisClient, cfg.Exchange.CacheTTL, logger)

	// Set Gin mode
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(handlers.CORSMiddleware())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	eventHandler := handlers.NewEventHandler(eventService, logger)
	rsvpHandler := handlers.NewRSVPHandler(rsvpService, ticketService, logger)
	uploadHandler := handlers.NewUploadHandler(blobClient, logger)
	exchangeHandler := handlers.NewExchangeHandler(exchangeService, logger)

	authRequired := handlers.AuthMiddleware(authService)

	// API routes
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		eventsGroup := api.Group("/events")
		{
			eventsGroup.GET("", eventHandler.List)
			eventsGroup.GET("/:id", eventHandler.Get)
			eventsGroup.POST("", authRequired, eventHandler.Create)
			eventsGroup.PUT("/:id", authRequired, eventHandler.Update)
			eventsGroup.DELETE("/:id", authRequired, eventHandler.Delete)
			eventsGroup.POST("/:id/rsvp", authRequired, rsvpHandler.Register)
			eventsGroup.POST("/:id/transaction", authRequired, rsvpHandler.ConfirmTransaction)
			eventsGroup.GET("/:id/rsvps", authRequired, rsvpHandler.GuestList)
		}

		rsvpsGroup := api.Group("/rsvps", authRequired)
		{
			rsvpsGroup.GET("", rsvpHandler.Mine)
			rsvpsGroup.POST("/:eventId/send-ticket", rsvpHandler.SendTicket)
		}

		api.GET("/organizer/events", authRequired, eventHandler.Mine)
		api.GET("/exchange-rate", exchangeHandler.Rate)
		api.POST("/upload", authRequired, uploadHandler.Upload)
	}

	// Start server
	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger(level string) *zap.Logger {
	var logLevel zapcore.Level
	switch level {
	case "debug":
		logLevel = zap.DebugLevel
	case "info":
		logLevel = zap.InfoLevel
	case "warn":
		logLevel = zap.WarnLevel
	case "error":
		logLevel = zapcore.ErrorLevel
	default:
		logLevel = zap.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(logLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	return logger
}
