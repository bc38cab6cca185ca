package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookDeliveryStatus represents the outcome of a delivery attempt.
type WebhookDeliveryStatus string

const (
	WebhookDeliveryStatusDelivered WebhookDeliveryStatus = "DELIVERED"
	WebhookDeliveryStatusFailed    WebhookDeliveryStatus = "FAILED"
)

// WebhookDelivery records one attempt to notify an external payer
// integration of an enrollment status change.
type WebhookDelivery struct {
	ID           uuid.UUID             `json:"id"`
	EnrollmentID uuid.UUID             `json:"enrollment_id"`
	URL          string                `json:"url"`
	EventType    string                `json:"event_type"`
	Status       WebhookDeliveryStatus `json:"status"`
	Attempts     int                   `json:"attempts"`
	LastError    string                `json:"last_error,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}
