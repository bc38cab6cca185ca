package handler

import (
	"strconv"

	"credentialing-crm/internal/adapter/http/dto"
	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"
	"credentialing-crm/pkg/apperror"
	"credentialing-crm/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuditHandler serves read queries over the audit trail.
type AuditHandler struct {
	recorder     ports.AuditRecorder
	defaultLimit int
}

// NewAuditHandler creates a new AuditHandler. defaultLimit is the page
// size applied when a query carries no limit param; values <= 0 fall
// back to DefaultAuditQueryLimit.
func NewAuditHandler(recorder ports.AuditRecorder, defaultLimit int) *AuditHandler {
	if defaultLimit <= 0 {
		defaultLimit = ports.DefaultAuditQueryLimit
	}
	return &AuditHandler{recorder: recorder, defaultLimit: defaultLimit}
}

// List handles GET /api/v1/audit-logs. Results come back most recent
// first; every filter param is an exact-match on the corresponding
// entry field.
func (h *AuditHandler) List(c *gin.Context) {
	q := ports.AuditQuery{Limit: h.defaultLimit}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			response.Error(c, apperror.Validation("limit must be a positive integer"))
			return
		}
		q.Limit = limit
	}

	if raw := c.Query("action"); raw != "" {
		action := domain.AuditAction(raw)
		q.Filter.Action = &action
	}
	if raw := c.Query("resource_type"); raw != "" {
		q.Filter.ResourceType = &raw
	}
	if raw := c.Query("resource_id"); raw != "" {
		q.Filter.ResourceID = &raw
	}
	if raw := c.Query("actor_user_id"); raw != "" {
		q.Filter.ActorUserID = &raw
	}
	if raw := c.Query("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, apperror.Validation("success must be true or false"))
			return
		}
		q.Filter.Success = &success
	}
	if raw := c.Query("method"); raw != "" {
		q.Filter.Method = &raw
	}
	if raw := c.Query("route"); raw != "" {
		q.Filter.Route = &raw
	}
	if raw := c.Query("ip_address"); raw != "" {
		q.Filter.IPAddress = &raw
	}

	entries := h.recorder.Query(c.Request.Context(), q)

	items := make([]dto.AuditLogEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewAuditLogEntryResponse(&entries[i]))
	}

	response.OK(c, dto.AuditLogListResponse{Items: items, Count: len(items)})
}
