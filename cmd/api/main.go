package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/stomadent/clinic-api/internal/config"
	"github.com/stomadent/clinic-api/internal/email"
	"github.com/stomadent/clinic-api/internal/handler"
	adminHandler "github.com/stomadent/clinic-api/internal/handler/admin"
	appointmentHandler "github.com/stomadent/clinic-api/internal/handler/appointment"
	authHandler "github.com/stomadent/clinic-api/internal/handler/auth"
	patientHandler "github.com/stomadent/clinic-api/internal/handler/patient"
	shopHandler "github.com/stomadent/clinic-api/internal/handler/shop"
	"github.com/stomadent/clinic-api/internal/middleware"
	"github.com/stomadent/clinic-api/internal/notification"
	"github.com/stomadent/clinic-api/internal/ratelimit"
	"github.com/stomadent/clinic-api/internal/repository/postgres"
	"github.com/stomadent/clinic-api/internal/router"
	adminService "github.com/stomadent/clinic-api/internal/service/admin"
	appointmentService "github.com/stomadent/clinic-api/internal/service/appointment"
	authService "github.com/stomadent/clinic-api/internal/service/auth"
	patientService "github.com/stomadent/clinic-api/internal/service/patient"
	shopService "github.com/stomadent/clinic-api/internal/service/shop"
	"github.com/stomadent/clinic-api/pkg/auth"
	"github.com/stomadent/clinic-api/pkg/logger"
	"github.com/stomadent/clinic-api/pkg/metrics"
	"github.com/stomadent/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentActionRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	shopRepo := postgres.NewShopRepository(db)

	// Password reset attempts are throttled in Redis so the window survives
	// restarts; without Redis a per-instance fallback is used.
	resetWindow := time.Duration(cfg.RateLimit.ResetWindowMin) * time.Minute
	var resetLimiter ratelimit.Limiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis url")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		resetLimiter = ratelimit.NewRedisLimiter(rdb, "ratelimit", cfg.RateLimit.ResetAttempts, resetWindow)
	} else {
		log.Warn().Msg("redis not configured, using in-memory rate limiter")
		resetLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.ResetAttempts, resetWindow)
	}

	// Notification channels
	appMetrics := metrics.NewMetrics("clinic_api")
	var channels []notification.Channel
	if cfg.Notifications.Telegram.Token != "" {
		channels = append(channels, notification.NewChatBotChannel(
			notification.ChannelTelegram,
			cfg.Notifications.Telegram.Token,
			cfg.Notifications.Telegram.RecipientList(),
		))
	}
	if cfg.Notifications.Whatsapp.Token != "" {
		channels = append(channels, notification.NewChatBotChannel(
			notification.ChannelWhatsapp,
			cfg.Notifications.Whatsapp.Token,
			cfg.Notifications.Whatsapp.RecipientList(),
		))
	}
	if cfg.Notifications.AdminEmail != "" {
		channels = append(channels, notification.NewEmailChannel(cfg.SMTP, cfg.Notifications.AdminEmail))
	}
	notifier := notification.NewNotifier(appLogger, appMetrics, channels...)
	log.Info().Strs("channels", notifier.Channels()).Msg("notification channels configured")

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	emailSvc := email.NewSMTPService(cfg.SMTP, cfg.Site.BaseURL)

	appointmentSvc := appointmentService.NewService(appointmentRepo, notifier, appLogger)
	patientSvc := patientService.NewService(patientRepo, tokenRepo, emailSvc, hasher, appLogger)
	authSvc := authService.NewService(patientRepo, tokenRepo, jwtSvc, hasher, resetLimiter, emailSvc, appLogger)
	adminSvc := adminService.NewService(patientRepo, authSvc, hasher, appLogger)
	stripeClient := shopService.NewStripeClient(cfg.Stripe.SecretKey)
	shopSvc := shopService.NewService(shopRepo, stripeClient, cfg.Stripe.WebhookSecret, cfg.Site.BaseURL, appLogger)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	h := handler.NewHandler(db)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	patientH := patientHandler.NewHandler(patientSvc, appointmentSvc, patientRepo, authMiddleware)
	authH := authHandler.NewHandler(authSvc)
	adminH := adminHandler.NewHandler(adminSvc, authMiddleware)
	shopH := shopHandler.NewHandler(shopSvc)

	r := router.NewRouter(h, appMetrics, router.Config{
		RPS:            cfg.RateLimit.RequestsPerSecond,
		Burst:          cfg.RateLimit.Burst,
		AllowedOrigins: []string{cfg.Site.BaseURL},
	}, appointmentH, patientH, authH, adminH, shopH)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
