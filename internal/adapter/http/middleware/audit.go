package middleware

import (
	"net/http"

	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxAuditMetadata is the context key handlers use to attach extra
// fields to the request's audit entry.
const CtxAuditMetadata = "audit_metadata"

// auditRoute maps one route pattern + method to its audit action and
// resource type.
type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// auditedRoutes keys are "METHOD route-pattern" as reported by gin's
// FullPath.
var auditedRoutes = map[string]auditRoute{
	"POST /api/v1/enrollments":               {domain.AuditActionCreateEnrollment, "enrollment"},
	"PATCH /api/v1/enrollments/:id/status":   {domain.AuditActionUpdateStatus, "enrollment"},
	"PATCH /api/v1/enrollments/:id/progress": {domain.AuditActionUpdateProgress, "enrollment"},
	"GET /api/v1/providers/:id/banking":      {domain.AuditActionViewBankingData, "banking_details"},
	"PUT /api/v1/providers/:id/banking":      {domain.AuditActionUpdateBankingData, "banking_details"},
}

// AuditTrail records one audit entry per request on security-sensitive
// routes once the outcome is known. It observes only: the response is
// never altered, and a failed capture never fails the request.
func AuditTrail(recorder ports.AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route, ok := auditedRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		status := c.Writer.Status()
		entry := &domain.AuditLogEntry{
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   c.Param("id"),
			Route:        c.FullPath(),
			Method:       c.Request.Method,
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			Success:      status < http.StatusBadRequest,
		}

		entry.Actor = actorFromContext(c)

		if !entry.Success && len(c.Errors) > 0 {
			entry.Error = c.Errors.Last().Error()
		}

		if md, exists := c.Get(CtxAuditMetadata); exists {
			if m, ok := md.(map[string]interface{}); ok {
				entry.Metadata = m
			}
		}

		recorder.Record(c.Request.Context(), entry)
	}
}

// SetAuditMetadata attaches one key/value pair to the request's audit
// entry. Safe to call multiple times within a handler.
func SetAuditMetadata(c *gin.Context, key string, value interface{}) {
	var m map[string]interface{}
	if existing, exists := c.Get(CtxAuditMetadata); exists {
		m, _ = existing.(map[string]interface{})
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	m[key] = value
	c.Set(CtxAuditMetadata, m)
}

func actorFromContext(c *gin.Context) *domain.AuditActor {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	actor := &domain.AuditActor{UserID: id.String()}
	if email, exists := c.Get(CtxEmail); exists {
		actor.Email, _ = email.(string)
	}
	if role, exists := c.Get(CtxRole); exists {
		actor.Role, _ = role.(string)
	}
	return actor
}
