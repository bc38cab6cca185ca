package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProviderStatus represents the credentialing standing of a provider.
type ProviderStatus string

const (
	ProviderStatusActive   ProviderStatus = "ACTIVE"
	ProviderStatusInactive ProviderStatus = "INACTIVE"
)

// Provider is a healthcare provider tracked by the CRM.
type Provider struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	NPI       string         `json:"npi"`
	Status    ProviderStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsActive returns true if the provider may be attached to enrollments.
func (p *Provider) IsActive() bool {
	return p.Status == ProviderStatusActive
}

// BankingDetails holds a provider's payment banking data. Account and
// routing numbers are stored AES-256-GCM encrypted; reads of this record
// are always audit-wrapped.
type BankingDetails struct {
	ProviderID       uuid.UUID `json:"provider_id"`
	AccountName      string    `json:"account_name"`
	AccountNumberEnc string    `json:"-"`
	RoutingNumberEnc string    `json:"-"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MaskAccountNumber returns the conventional masked rendering of a
// decrypted account number, keeping the last four digits.
func MaskAccountNumber(accountNumber string) string {
	if len(accountNumber) <= 4 {
		return "****"
	}
	return "****" + accountNumber[len(accountNumber)-4:]
}
