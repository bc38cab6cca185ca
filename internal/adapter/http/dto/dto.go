package dto

import (
	"encoding/json"

	"credentialing-crm/internal/core/domain"
)

// CreateEnrollmentRequest is the request body for enrollment creation.
// Status is optional and defaults to discovery.
type CreateEnrollmentRequest struct {
	ProviderID string `json:"provider_id" binding:"required,uuid"`
	PayerName  string `json:"payer_name" binding:"required,min=1,max=200"`
	Status     string `json:"status" binding:"omitempty,enrollment_status"`
}

// StatusUpdateRequest is the request body for a status change. The
// status value is checked against the lifecycle enum by the service so
// rejections carry the domain error code.
type StatusUpdateRequest struct {
	Status        string `json:"status" binding:"required"`
	StoppedReason string `json:"stopped_reason"`
	ProviderID    string `json:"provider_id"`
}

// ProgressUpdateRequest is the request body for a progress change.
// Progress is a *json.Number so a missing field, a non-numeric value,
// and a fractional value are all distinguishable.
type ProgressUpdateRequest struct {
	Progress *json.Number `json:"progress"`
}

// BankingUpdateRequest is the request body for replacing a provider's
// banking details.
type BankingUpdateRequest struct {
	AccountName   string `json:"account_name" binding:"required,min=1,max=200"`
	AccountNumber string `json:"account_number" binding:"required,min=4,max=17,numeric"`
	RoutingNumber string `json:"routing_number" binding:"required,len=9,numeric"`
}

// EnrollmentResponse is the response body for enrollment reads and
// mutations.
type EnrollmentResponse struct {
	ID            string  `json:"id"`
	ProviderID    string  `json:"provider_id"`
	PayerName     string  `json:"payer_name"`
	Status        string  `json:"status"`
	Progress      int     `json:"progress"`
	StoppedReason *string `json:"stopped_reason,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// NewEnrollmentResponse maps a domain enrollment to its response shape.
func NewEnrollmentResponse(e *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:            e.ID.String(),
		ProviderID:    e.ProviderID.String(),
		PayerName:     e.PayerName,
		Status:        string(e.Status),
		Progress:      e.Progress,
		StoppedReason: e.StoppedReason,
		CreatedAt:     e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     e.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// BankingDetailsResponse is the response for banking reads. Decrypted
// fields appear only when explicitly requested.
type BankingDetailsResponse struct {
	ProviderID          string `json:"provider_id"`
	AccountName         string `json:"account_name"`
	AccountNumberMasked string `json:"account_number_masked"`
	AccountNumber       string `json:"account_number,omitempty"`
	RoutingNumber       string `json:"routing_number,omitempty"`
	UpdatedAt           string `json:"updated_at"`
}

// AuditLogEntryResponse is one entry in an audit query result.
type AuditLogEntryResponse struct {
	ID           string                 `json:"id"`
	Timestamp    string                 `json:"timestamp"`
	Actor        *domain.AuditActor     `json:"actor,omitempty"`
	IPAddress    string                 `json:"ip_address"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	Route        string                 `json:"route"`
	Method       string                 `json:"method"`
	Success      bool                   `json:"success"`
	Error        string                 `json:"error,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewAuditLogEntryResponse maps a domain audit entry to its response
// shape.
func NewAuditLogEntryResponse(e *domain.AuditLogEntry) AuditLogEntryResponse {
	return AuditLogEntryResponse{
		ID:           e.ID.String(),
		Timestamp:    e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Actor:        e.Actor,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		Action:       string(e.Action),
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Route:        e.Route,
		Method:       e.Method,
		Success:      e.Success,
		Error:        e.Error,
		Metadata:     e.Metadata,
	}
}

// AuditLogListResponse wraps an audit query result.
type AuditLogListResponse struct {
	Items []AuditLogEntryResponse `json:"items"`
	Count int                     `json:"count"`
}
