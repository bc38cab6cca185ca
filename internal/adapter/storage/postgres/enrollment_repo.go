package postgres

import (
	"context"
	"errors"
	"fmt"

	"credentialing-crm/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EnrollmentRepo implements ports.EnrollmentRepository.
type EnrollmentRepo struct {
	pool Pool
}

// NewEnrollmentRepo creates a new EnrollmentRepo.
func NewEnrollmentRepo(pool Pool) *EnrollmentRepo {
	return &EnrollmentRepo{pool: pool}
}

// Create inserts a new enrollment.
func (r *EnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	query := `INSERT INTO enrollments (id, provider_id, payer_name, status, progress, stopped_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.ProviderID, e.PayerName, e.Status,
		e.Progress, e.StoppedReason, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// GetByID fetches an enrollment by its UUID. Returns nil when no row
// matches.
func (r *EnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	query := `SELECT id, provider_id, payer_name, status, progress, stopped_reason, created_at, updated_at
		FROM enrollments WHERE id = $1`

	e := &domain.Enrollment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.ProviderID, &e.PayerName, &e.Status,
		&e.Progress, &e.StoppedReason, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment by id: %w", err)
	}
	return e, nil
}

// UpdateStatus persists a status change. StoppedReason is cleared when
// the target status is not stopped.
func (r *EnrollmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EnrollmentStatus, stoppedReason *string) error {
	query := `UPDATE enrollments
		SET status=$1, stopped_reason=$2, updated_at=NOW()
		WHERE id=$3`

	_, err := r.pool.Exec(ctx, query, status, stoppedReason, id)
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// UpdateProgress persists a new progress value.
func (r *EnrollmentRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	query := `UPDATE enrollments
		SET progress=$1, updated_at=NOW()
		WHERE id=$2`

	_, err := r.pool.Exec(ctx, query, progress, id)
	if err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	return nil
}
