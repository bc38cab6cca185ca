package ports

import (
	"context"
	"time"

	"credentialing-crm/internal/core/domain"

	"github.com/google/uuid"
)

// AuditRecorder captures normalized records of security-sensitive
// operations and serves read queries over the in-process log.
//
// Record must never fail the caller: capture errors are swallowed and
// best-effort logged. The in-memory append completes before Record
// returns; durable forwarding is fire-and-forget.
type AuditRecorder interface {
	Record(ctx context.Context, entry *domain.AuditLogEntry)
	Query(ctx context.Context, q AuditQuery) []domain.AuditLogEntry
}

// DefaultAuditQueryLimit caps query results when no limit is given.
const DefaultAuditQueryLimit = 100

// AuditQuery selects entries from the audit log, most recent first.
type AuditQuery struct {
	Limit  int // 0 = DefaultAuditQueryLimit
	Filter AuditFilter
}

// AuditFilter is a partial field-equality match: an entry matches iff
// every set field equals the entry's value exactly.
type AuditFilter struct {
	Action       *domain.AuditAction
	ResourceType *string
	ResourceID   *string
	ActorUserID  *string
	Success      *bool
	Method       *string
	Route        *string
	IPAddress    *string
}

// EnrollmentService owns the enrollment lifecycle: creation, lookups,
// and guard-validated status/progress mutations.
type EnrollmentService interface {
	Create(ctx context.Context, req CreateEnrollmentRequest) (*domain.Enrollment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange) (*domain.Enrollment, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*domain.Enrollment, error)
}

// CreateEnrollmentRequest holds validated input for enrollment creation.
type CreateEnrollmentRequest struct {
	ProviderID uuid.UUID
	PayerName  string
	Status     domain.EnrollmentStatus // optional; defaults to discovery
}

// BankingDetailsResult is a read view of banking data. Decrypted fields
// are populated only when the caller asked for them; the request itself
// is recorded as audit metadata.
type BankingDetailsResult struct {
	ProviderID          uuid.UUID
	AccountName         string
	AccountNumberMasked string
	AccountNumber       string // empty unless decryption requested
	RoutingNumber       string // empty unless decryption requested
	UpdatedAt           time.Time
}

// BankingService handles provider banking data access.
type BankingService interface {
	GetBankingDetails(ctx context.Context, providerID uuid.UUID, includeDecrypted bool) (*BankingDetailsResult, error)
	UpdateBankingDetails(ctx context.Context, providerID uuid.UUID, req BankingUpdateRequest) error
}

// BankingUpdateRequest holds plaintext banking fields to be encrypted
// and stored.
type BankingUpdateRequest struct {
	AccountName   string
	AccountNumber string
	RoutingNumber string
}

// EncryptionService handles AES-256-GCM encryption/decryption of
// banking fields.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing of webhook payloads.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TokenService validates bearer tokens issued by the external auth
// layer, and can mint tokens for tests and operational tooling.
type TokenService interface {
	Generate(userID uuid.UUID, email, role string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed identity claims.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// WebhookNotifier delivers enrollment status-change notifications to the
// configured payer-integration endpoint.
type WebhookNotifier interface {
	NotifyStatusChange(ctx context.Context, enrollment *domain.Enrollment, from domain.EnrollmentStatus) error
}
