package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionCreateEnrollment   AuditAction = "create_enrollment"
	AuditActionUpdateStatus       AuditAction = "update_status"
	AuditActionUpdateProgress     AuditAction = "update_progress"
	AuditActionViewBankingData    AuditAction = "view_banking_data"
	AuditActionUpdateBankingData  AuditAction = "update_banking_data"
	AuditActionRateLimitViolation AuditAction = "rate_limit_violation"
)

// AuditActor identifies the authenticated principal behind an audited
// action. Absent for system-initiated actions.
type AuditActor struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// AuditLogEntry records one security-sensitive event. Created once when
// the wrapped operation's outcome is known; immutable afterwards.
type AuditLogEntry struct {
	ID           uuid.UUID              `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	Actor        *AuditActor            `json:"actor,omitempty"`
	IPAddress    string                 `json:"ip_address"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	Action       AuditAction            `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	Route        string                 `json:"route"`
	Method       string                 `json:"method"`
	Success      bool                   `json:"success"`
	Error        string                 `json:"error,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}
