package integration

import (
	"context"
	"fmt"
	"sync"

	"credentialing-crm/internal/core/domain"

	"github.com/google/uuid"
)

// --- In-Memory Enrollment Repo ---

type inMemoryEnrollmentRepo struct {
	mu          sync.RWMutex
	enrollments map[uuid.UUID]*domain.Enrollment
}

func newInMemoryEnrollmentRepo() *inMemoryEnrollmentRepo {
	return &inMemoryEnrollmentRepo{enrollments: make(map[uuid.UUID]*domain.Enrollment)}
}

func (r *inMemoryEnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.enrollments[e.ID] = &cp
	return nil
}

func (r *inMemoryEnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enrollments[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryEnrollmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EnrollmentStatus, stoppedReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return fmt.Errorf("enrollment not found")
	}
	e.Status = status
	e.StoppedReason = stoppedReason
	return nil
}

func (r *inMemoryEnrollmentRepo) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return fmt.Errorf("enrollment not found")
	}
	e.Progress = progress
	return nil
}

// --- In-Memory Provider Repo ---

type inMemoryProviderRepo struct {
	mu        sync.RWMutex
	providers map[uuid.UUID]*domain.Provider
	banking   map[uuid.UUID]*domain.BankingDetails
}

func newInMemoryProviderRepo() *inMemoryProviderRepo {
	return &inMemoryProviderRepo{
		providers: make(map[uuid.UUID]*domain.Provider),
		banking:   make(map[uuid.UUID]*domain.BankingDetails),
	}
}

func (r *inMemoryProviderRepo) addProvider(p *domain.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = p
}

func (r *inMemoryProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *inMemoryProviderRepo) GetBankingDetails(ctx context.Context, providerID uuid.UUID) (*domain.BankingDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.banking[providerID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *inMemoryProviderRepo) UpsertBankingDetails(ctx context.Context, details *domain.BankingDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *details
	r.banking[details.ProviderID] = &cp
	return nil
}
