package handler

import (
	"credentialing-crm/internal/adapter/http/middleware"
	redisStore "credentialing-crm/internal/adapter/storage/redis"
	"credentialing-crm/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	EnrollmentSvc     ports.EnrollmentService
	BankingSvc        ports.BankingService
	AuditRecorder     ports.AuditRecorder
	TokenSvc          ports.TokenService
	RateLimitStore    *redisStore.RateLimitStore          // nil = rate limiting disabled
	RateLimitRules    map[string]middleware.RateLimitRule // nil = default rules
	AuditDefaultLimit int                                 // <= 0 = default page size
	HealthCheckers    []ports.HealthChecker
	Logger            zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit trail (records after response on security-sensitive routes)
	r.Use(middleware.AuditTrail(deps.AuditRecorder))

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := deps.RateLimitRules
	if rules == nil {
		rules = middleware.DefaultRateLimitRules()
	}

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, deps.AuditRecorder, group, rule, deps.Logger)
	}

	// API v1 routes (all JWT-authenticated)
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	enrollmentHandler := NewEnrollmentHandler(deps.EnrollmentSvc)
	enrollments := v1.Group("/enrollments")
	{
		enrollments.POST("", rl("enrollments"), enrollmentHandler.Create)
		enrollments.GET("/:id", rl("enrollments"), enrollmentHandler.GetByID)
		enrollments.PATCH("/:id/status", rl("enrollments"), enrollmentHandler.UpdateStatus)
		enrollments.PATCH("/:id/progress", rl("enrollments"), enrollmentHandler.UpdateProgress)
	}

	providerHandler := NewProviderHandler(deps.BankingSvc)
	providers := v1.Group("/providers")
	{
		providers.GET("/:id/banking", rl("banking"), providerHandler.GetBankingDetails)
		providers.PUT("/:id/banking", rl("banking"), providerHandler.UpdateBankingDetails)
	}

	// --- Audit log queries (admin only) ---
	auditHandler := NewAuditHandler(deps.AuditRecorder, deps.AuditDefaultLimit)
	auditLogs := v1.Group("/audit-logs", middleware.RequireRole(middleware.RoleAdmin))
	{
		auditLogs.GET("", rl("audit"), auditHandler.List)
	}

	return r
}
