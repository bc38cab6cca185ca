package service

import (
	"context"
	"strings"
	"time"

	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"
	"credentialing-crm/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type enrollmentService struct {
	enrollmentRepo ports.EnrollmentRepository
	providerRepo   ports.ProviderRepository
	notifier       ports.WebhookNotifier
	log            zerolog.Logger
}

// NewEnrollmentService creates the enrollment lifecycle service.
// notifier may be nil when status-change webhooks are disabled.
func NewEnrollmentService(
	enrollmentRepo ports.EnrollmentRepository,
	providerRepo ports.ProviderRepository,
	notifier ports.WebhookNotifier,
	log zerolog.Logger,
) ports.EnrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		providerRepo:   providerRepo,
		notifier:       notifier,
		log:            log,
	}
}

func (s *enrollmentService) Create(ctx context.Context, req ports.CreateEnrollmentRequest) (*domain.Enrollment, error) {
	provider, err := s.providerRepo.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if provider == nil {
		return nil, apperror.ErrNotFound("Provider")
	}
	if !provider.IsActive() {
		return nil, apperror.ErrBusinessRule("enrollments cannot be created for an inactive provider")
	}

	status := req.Status
	if status == "" {
		status = domain.StatusDiscovery
	}
	if !status.IsValid() {
		return nil, apperror.ErrInvalidStatus(string(status))
	}

	now := time.Now().UTC()
	enrollment := &domain.Enrollment{
		ID:         uuid.New(),
		ProviderID: req.ProviderID,
		PayerName:  strings.TrimSpace(req.PayerName),
		Status:     status,
		Progress:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	s.log.Info().
		Str("enrollment_id", enrollment.ID.String()).
		Str("provider_id", enrollment.ProviderID.String()).
		Str("payer", enrollment.PayerName).
		Msg("enrollment created")

	return enrollment, nil
}

func (s *enrollmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if enrollment == nil {
		return nil, apperror.ErrNotFound("Enrollment")
	}
	return enrollment, nil
}

// UpdateStatus applies a guard-validated status change. Validation
// order is fixed: status membership, then business rules on the target,
// then transition legality against the stored record.
func (s *enrollmentService) UpdateStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange) (*domain.Enrollment, error) {
	if !change.Status.IsValid() {
		return nil, apperror.ErrInvalidStatus(string(change.Status))
	}
	if err := domain.ValidateStatusPayload(change); err != nil {
		return nil, apperror.ErrBusinessRule(err.Error())
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if enrollment == nil {
		return nil, apperror.ErrNotFound("Enrollment")
	}

	if err := domain.ValidateTransition(enrollment.Status, change.Status); err != nil {
		return nil, apperror.ErrInvalidTransition(err.Error())
	}

	from := enrollment.Status
	var stoppedReason *string
	if change.Status == domain.StatusStopped {
		reason := strings.TrimSpace(change.StoppedReason)
		stoppedReason = &reason
	}

	if err := s.enrollmentRepo.UpdateStatus(ctx, id, change.Status, stoppedReason); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	enrollment.Status = change.Status
	enrollment.StoppedReason = stoppedReason
	enrollment.UpdatedAt = time.Now().UTC()

	s.log.Info().
		Str("enrollment_id", id.String()).
		Str("from", string(from)).
		Str("to", string(change.Status)).
		Msg("enrollment status updated")

	if s.notifier != nil && from != change.Status {
		if err := s.notifier.NotifyStatusChange(ctx, enrollment, from); err != nil {
			s.log.Warn().Err(err).Str("enrollment_id", id.String()).Msg("status change notification failed")
		}
	}

	return enrollment, nil
}

func (s *enrollmentService) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*domain.Enrollment, error) {
	if err := domain.ValidateProgress(float64(progress)); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if enrollment == nil {
		return nil, apperror.ErrNotFound("Enrollment")
	}

	if err := s.enrollmentRepo.UpdateProgress(ctx, id, progress); err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}

	enrollment.Progress = progress
	enrollment.UpdatedAt = time.Now().UTC()
	return enrollment, nil
}
