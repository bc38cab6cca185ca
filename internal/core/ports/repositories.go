package ports

import (
	"context"

	"credentialing-crm/internal/core/domain"

	"github.com/google/uuid"
)

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EnrollmentStatus, stoppedReason *string) error
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error
}

// ProviderRepository defines persistence operations for providers and
// their banking details.
type ProviderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error)
	GetBankingDetails(ctx context.Context, providerID uuid.UUID) (*domain.BankingDetails, error)
	UpsertBankingDetails(ctx context.Context, details *domain.BankingDetails) error
}

// AuditStore is the in-process append-only audit log. Append must be
// safe under concurrent writers and must not perform I/O; Query returns
// a consistent snapshot, most recent first.
type AuditStore interface {
	Append(entry domain.AuditLogEntry) error
	Query(q AuditQuery) []domain.AuditLogEntry
}

// AuditSink forwards audit entries to a durable external store. Calls
// happen off the request path; failures are logged and dropped.
type AuditSink interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
}

// WebhookRepository records status-change webhook delivery attempts.
type WebhookRepository interface {
	RecordDelivery(ctx context.Context, delivery *domain.WebhookDelivery) error
}
