package postgres

import (
	"context"
	"errors"
	"fmt"

	"credentialing-crm/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProviderRepo implements ports.ProviderRepository.
type ProviderRepo struct {
	pool Pool
}

// NewProviderRepo creates a new ProviderRepo.
func NewProviderRepo(pool Pool) *ProviderRepo {
	return &ProviderRepo{pool: pool}
}

// GetByID fetches a provider by its UUID.
func (r *ProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	query := `SELECT id, name, npi, status, created_at, updated_at
		FROM providers WHERE id = $1`

	p := &domain.Provider{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.NPI, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider by id: %w", err)
	}
	return p, nil
}

// GetBankingDetails fetches a provider's encrypted banking record.
func (r *ProviderRepo) GetBankingDetails(ctx context.Context, providerID uuid.UUID) (*domain.BankingDetails, error) {
	query := `SELECT provider_id, account_name, account_number_enc, routing_number_enc, updated_at
		FROM provider_banking_details WHERE provider_id = $1`

	b := &domain.BankingDetails{}
	err := r.pool.QueryRow(ctx, query, providerID).Scan(
		&b.ProviderID, &b.AccountName, &b.AccountNumberEnc, &b.RoutingNumberEnc, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get banking details: %w", err)
	}
	return b, nil
}

// UpsertBankingDetails inserts or replaces a provider's banking record.
func (r *ProviderRepo) UpsertBankingDetails(ctx context.Context, details *domain.BankingDetails) error {
	query := `INSERT INTO provider_banking_details (provider_id, account_name, account_number_enc, routing_number_enc, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider_id) DO UPDATE
		SET account_name=EXCLUDED.account_name,
		    account_number_enc=EXCLUDED.account_number_enc,
		    routing_number_enc=EXCLUDED.routing_number_enc,
		    updated_at=EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		details.ProviderID, details.AccountName,
		details.AccountNumberEnc, details.RoutingNumberEnc, details.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert banking details: %w", err)
	}
	return nil
}
