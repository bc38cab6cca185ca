package service

import (
	"context"
	"time"

	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"
	"credentialing-crm/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type bankingService struct {
	providerRepo ports.ProviderRepository
	encSvc       ports.EncryptionService
	log          zerolog.Logger
}

// NewBankingService creates the provider banking data service. Account
// and routing numbers never leave this service unencrypted except in
// an explicitly requested decrypted read.
func NewBankingService(
	providerRepo ports.ProviderRepository,
	encSvc ports.EncryptionService,
	log zerolog.Logger,
) ports.BankingService {
	return &bankingService{
		providerRepo: providerRepo,
		encSvc:       encSvc,
		log:          log,
	}
}

func (s *bankingService) GetBankingDetails(ctx context.Context, providerID uuid.UUID, includeDecrypted bool) (*ports.BankingDetailsResult, error) {
	details, err := s.providerRepo.GetBankingDetails(ctx, providerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if details == nil {
		return nil, apperror.ErrNotFound("Banking details")
	}

	accountNumber, err := s.encSvc.Decrypt(details.AccountNumberEnc)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(err)
	}

	result := &ports.BankingDetailsResult{
		ProviderID:          details.ProviderID,
		AccountName:         details.AccountName,
		AccountNumberMasked: domain.MaskAccountNumber(accountNumber),
		UpdatedAt:           details.UpdatedAt,
	}

	if includeDecrypted {
		routingNumber, err := s.encSvc.Decrypt(details.RoutingNumberEnc)
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(err)
		}
		result.AccountNumber = accountNumber
		result.RoutingNumber = routingNumber
	}

	return result, nil
}

func (s *bankingService) UpdateBankingDetails(ctx context.Context, providerID uuid.UUID, req ports.BankingUpdateRequest) error {
	provider, err := s.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		return apperror.ErrDatabaseError(err)
	}
	if provider == nil {
		return apperror.ErrNotFound("Provider")
	}

	accountEnc, err := s.encSvc.Encrypt(req.AccountNumber)
	if err != nil {
		return apperror.ErrEncryptionFailure(err)
	}
	routingEnc, err := s.encSvc.Encrypt(req.RoutingNumber)
	if err != nil {
		return apperror.ErrEncryptionFailure(err)
	}

	details := &domain.BankingDetails{
		ProviderID:       providerID,
		AccountName:      req.AccountName,
		AccountNumberEnc: accountEnc,
		RoutingNumberEnc: routingEnc,
		UpdatedAt:        time.Now().UTC(),
	}

	if err := s.providerRepo.UpsertBankingDetails(ctx, details); err != nil {
		return apperror.ErrDatabaseError(err)
	}

	s.log.Info().
		Str("provider_id", providerID.String()).
		Msg("banking details updated")

	return nil
}
