package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/badwords"
	"github.com/joy095/hotelbooking/cache"
	"github.com/joy095/hotelbooking/clients"
	"github.com/joy095/hotelbooking/config"
	"github.com/joy095/hotelbooking/config/db"
	"github.com/joy095/hotelbooking/config/redis"
	"github.com/joy095/hotelbooking/controllers/booking_controller"
	"github.com/joy095/hotelbooking/controllers/payment_controller"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/metrics"
	middleware "github.com/joy095/hotelbooking/middlewares"
	"github.com/joy095/hotelbooking/middlewares/cors"
	logger_middleware "github.com/joy095/hotelbooking/middlewares/logger"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/models/booking_record_models"
	"github.com/joy095/hotelbooking/models/hotel_models"
	"github.com/joy095/hotelbooking/models/webhook_event_models"
	"github.com/joy095/hotelbooking/routes"
	"github.com/joy095/hotelbooking/utils/mail"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.ErrorLogger.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		// Redis only backs the cache and rate limiter, both work without it.
		logger.WarnLogger.Warnf("Continuing without redis: %v", err)
		redisClient = nil
	}
	defer redis.Close(redisClient)

	metrics.Register()

	if cfg.BadWordsFile != "" {
		if err := badwords.Load(cfg.BadWordsFile); err != nil {
			logger.WarnLogger.Warnf("Guest text screening disabled: %v", err)
		}
	}

	bookings := booking_models.NewRepository(pool)
	hotels := hotel_models.NewRepository(pool)
	events := webhook_event_models.NewRepository(pool)
	records := booking_record_models.NewRepository(pool)

	bookingCache := cache.NewBookingCache(redisClient, cfg.CacheTTL)
	processor := clients.NewRazorpayClient(cfg.ProcessorKeyID, cfg.ProcessorSecretKey, cfg.ProcessorTimeout)
	mailer := mail.NewMailer(cfg)
	if !cfg.MailEnabled() {
		logger.WarnLogger.Warn("SMTP not configured, booking e-mails are disabled")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware(cfg.AllowedOrigins))
	r.Use(logger_middleware.GinLogger())

	routes.RegisterAll(r, routes.Dependencies{
		Bookings:  booking_controller.NewBookingService(bookings, hotels, processor, bookingCache, mailer, cfg.ProcessorKeyID),
		Payments:  payment_controller.NewPaymentService(bookings, events, hotels, bookingCache, mailer, cfg.ProcessorSecretKey, cfg.ProcessorWebhookSecret),
		Records:   records,
		Limiter:   middleware.NewRateLimiterFactory(redisClient),
		JWTSecret: []byte(cfg.JWTSecret),
		Ping:      pool.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoLogger.Infof("Hotel booking service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorLogger.Fatalf("Server failed to listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.InfoLogger.Info("Server exited gracefully.")
}
