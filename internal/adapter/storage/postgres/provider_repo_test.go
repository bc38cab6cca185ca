package postgres

import (
	"context"
	"testing"
	"time"

	"credentialing-crm/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBankingDetails() *domain.BankingDetails {
	return &domain.BankingDetails{
		ProviderID:       uuid.New(),
		AccountName:      "Dr. Smith Practice LLC",
		AccountNumberEnc: "enc:account",
		RoutingNumberEnc: "enc:routing",
		UpdatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestProviderRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProviderRepo(mock)
	p := &domain.Provider{
		ID:        uuid.New(),
		Name:      "Dr. Smith",
		NPI:       "1234567890",
		Status:    domain.ProviderStatusActive,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectQuery("SELECT .+ FROM providers WHERE id").
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "npi", "status", "created_at", "updated_at"}).
			AddRow(p.ID, p.Name, p.NPI, p.Status, p.CreatedAt, p.UpdatedAt))

	result, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.NPI, result.NPI)
	assert.True(t, result.IsActive())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProviderRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM providers WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "npi", "status", "created_at", "updated_at"}))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_GetBankingDetails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProviderRepo(mock)
	b := newTestBankingDetails()

	mock.ExpectQuery("SELECT .+ FROM provider_banking_details WHERE provider_id").
		WithArgs(b.ProviderID).
		WillReturnRows(pgxmock.NewRows([]string{"provider_id", "account_name", "account_number_enc", "routing_number_enc", "updated_at"}).
			AddRow(b.ProviderID, b.AccountName, b.AccountNumberEnc, b.RoutingNumberEnc, b.UpdatedAt))

	result, err := repo.GetBankingDetails(context.Background(), b.ProviderID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, b.AccountNumberEnc, result.AccountNumberEnc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_UpsertBankingDetails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProviderRepo(mock)
	b := newTestBankingDetails()

	mock.ExpectExec("INSERT INTO provider_banking_details").
		WithArgs(b.ProviderID, b.AccountName, b.AccountNumberEnc, b.RoutingNumberEnc, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.UpsertBankingDetails(context.Background(), b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
