package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credentialing-crm/config"
	httpHandler "credentialing-crm/internal/adapter/http/handler"
	"credentialing-crm/internal/adapter/http/middleware"
	"credentialing-crm/internal/adapter/storage/memory"
	pgStorage "credentialing-crm/internal/adapter/storage/postgres"
	redisStorage "credentialing-crm/internal/adapter/storage/redis"
	"credentialing-crm/internal/core/ports"
	"credentialing-crm/internal/service"
	"credentialing-crm/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Credentialing CRM")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	enrollmentRepo := pgStorage.NewEnrollmentRepo(pool)
	providerRepo := pgStorage.NewProviderRepo(pool)
	webhookRepo := pgStorage.NewWebhookRepo(pool)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Audit trail: in-memory ring buffer, optionally persisted to postgres
	auditStore := memory.NewAuditStore(cfg.Audit.BufferSize)
	var auditSink ports.AuditSink
	if cfg.Audit.PersistToDB {
		auditSink = pgStorage.NewAuditSink(pool)
	}
	auditSvc := service.NewAuditService(auditStore, auditSink, log)

	// Status-change webhooks
	var notifier ports.WebhookNotifier
	if cfg.Webhook.Enabled {
		notifier = service.NewWebhookService(service.WebhookConfig{
			URL:        cfg.Webhook.URL,
			Secret:     cfg.Webhook.Secret,
			Timeout:    cfg.Webhook.Timeout,
			MaxRetries: cfg.Webhook.MaxRetries,
		}, sigSvc, webhookRepo, &http.Client{Timeout: cfg.Webhook.Timeout}, log)
	}

	// Initialize business services
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, providerRepo, notifier, log)
	bankingSvc := service.NewBankingService(providerRepo, encSvc, log)

	// Initialize rate limit store
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		EnrollmentSvc:  enrollmentSvc,
		BankingSvc:     bankingSvc,
		AuditRecorder:  auditSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		RateLimitRules: middleware.NewRateLimitRules(
			cfg.RateLimit.MaxRequests, cfg.RateLimit.Window,
			cfg.RateLimit.BankingMax, cfg.RateLimit.BankingWindow,
		),
		AuditDefaultLimit: cfg.Audit.DefaultLimit,
		HealthCheckers:    []ports.HealthChecker{pgHealth, redisHealth},
		Logger:            log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
