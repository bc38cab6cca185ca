package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	redisStore "credentialing-crm/internal/adapter/storage/redis"
	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"
	"credentialing-crm/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DefaultRateLimitWindow applies when a rule carries no window.
const DefaultRateLimitWindow = 900 * time.Second

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the per-endpoint-group limits.
// Banking routes run much tighter than the rest of the API.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"enrollments": {Limit: 300, Window: DefaultRateLimitWindow},
		"banking":     {Limit: 30, Window: DefaultRateLimitWindow},
		"audit":       {Limit: 60, Window: DefaultRateLimitWindow},
	}
}

// NewRateLimitRules builds the per-endpoint-group limits from configured
// values. Zero or negative values fall back to the defaults, so a partial
// configuration never disables a limit.
func NewRateLimitRules(maxRequests int64, window time.Duration, bankingMax int64, bankingWindow time.Duration) map[string]RateLimitRule {
	rules := DefaultRateLimitRules()

	api := rules["enrollments"]
	if maxRequests > 0 {
		api.Limit = maxRequests
	}
	if window > 0 {
		api.Window = window
	}
	rules["enrollments"] = api

	banking := rules["banking"]
	if bankingMax > 0 {
		banking.Limit = bankingMax
	}
	if bankingWindow > 0 {
		banking.Window = bankingWindow
	}
	rules["banking"] = banking

	return rules
}

// RateLimiter creates a rate-limiting middleware for a given endpoint
// group. Every violation is written to the audit trail before the 429
// goes out.
func RateLimiter(
	store *redisStore.RateLimitStore,
	recorder ports.AuditRecorder,
	group string,
	rule RateLimitRule,
	log zerolog.Logger,
) gin.HandlerFunc {
	window := rule.Window
	if window <= 0 {
		window = DefaultRateLimitWindow
	}

	return func(c *gin.Context) {
		identifier := extractIdentifier(c)
		key := fmt.Sprintf("%s:%s", identifier, group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		// Always set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := int64(window.Seconds())
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))

			recorder.Record(c.Request.Context(), &domain.AuditLogEntry{
				Action:       domain.AuditActionRateLimitViolation,
				ResourceType: "rate_limit",
				ResourceID:   group,
				Route:        c.FullPath(),
				Method:       c.Request.Method,
				IPAddress:    c.ClientIP(),
				UserAgent:    c.Request.UserAgent(),
				Actor:        actorFromContext(c),
				Success:      false,
				Error:        http.StatusText(http.StatusTooManyRequests),
				Metadata: map[string]interface{}{
					"limit":       result.Limit,
					"retry_after": retryAfter,
				},
			})

			response.RateLimited(c, retryAfter)
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier determines the rate limit key source: the
// authenticated user when present, otherwise the client IP.
func extractIdentifier(c *gin.Context) string {
	if id, ok := UserIDFromContext(c); ok {
		return id.String()
	}
	return c.ClientIP()
}
