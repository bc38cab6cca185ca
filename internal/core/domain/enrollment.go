package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus represents a stage in the payer enrollment lifecycle.
// The set is closed: any other value is rejected at the boundary.
type EnrollmentStatus string

const (
	StatusDiscovery       EnrollmentStatus = "discovery"
	StatusDataComplete    EnrollmentStatus = "data_complete"
	StatusSubmitted       EnrollmentStatus = "submitted"
	StatusPayerProcessing EnrollmentStatus = "payer_processing"
	StatusApproved        EnrollmentStatus = "approved"
	StatusActive          EnrollmentStatus = "active"
	StatusDenied          EnrollmentStatus = "denied"
	StatusStopped         EnrollmentStatus = "stopped"
)

// transitionRules defines the legal forward and backward moves between
// enrollment statuses. A transition not listed here (other than a
// self-transition) is rejected.
var transitionRules = map[EnrollmentStatus][]EnrollmentStatus{
	StatusDiscovery:       {StatusDataComplete, StatusStopped},
	StatusDataComplete:    {StatusSubmitted, StatusDiscovery, StatusStopped},
	StatusSubmitted:       {StatusPayerProcessing, StatusDataComplete, StatusStopped},
	StatusPayerProcessing: {StatusApproved, StatusDenied, StatusSubmitted, StatusStopped},
	StatusApproved:        {StatusActive, StatusStopped},
	StatusActive:          {StatusStopped},
	StatusStopped:         {StatusDiscovery},
	StatusDenied:          {StatusDiscovery},
}

// AllStatuses returns every member of the status enum.
func AllStatuses() []EnrollmentStatus {
	return []EnrollmentStatus{
		StatusDiscovery, StatusDataComplete, StatusSubmitted, StatusPayerProcessing,
		StatusApproved, StatusActive, StatusDenied, StatusStopped,
	}
}

// IsValid reports whether s is a member of the status enum.
func (s EnrollmentStatus) IsValid() bool {
	_, ok := transitionRules[s]
	return ok
}

// AllowedNextStatuses returns the statuses reachable from s, excluding
// the always-legal self-transition. The returned slice is a copy.
func AllowedNextStatuses(s EnrollmentStatus) []EnrollmentStatus {
	rules := transitionRules[s]
	out := make([]EnrollmentStatus, len(rules))
	copy(out, rules)
	return out
}

// ValidateTransition reports whether moving from current to proposed is
// legal. A self-transition is always legal, as is any assignment when
// current is unset (record creation or legacy backfill).
func ValidateTransition(current, proposed EnrollmentStatus) error {
	if current == "" || current == proposed {
		return nil
	}
	for _, next := range transitionRules[current] {
		if next == proposed {
			return nil
		}
	}
	return fmt.Errorf("invalid status transition from %q to %q; allowed next statuses: %s",
		current, proposed, formatAllowedSet(transitionRules[current]))
}

func formatAllowedSet(statuses []EnrollmentStatus) string {
	if len(statuses) == 0 {
		return "none"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Progress validation errors.
var (
	ErrProgressNotInteger = errors.New("progress must be an integer")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
)

// ValidateProgress checks a raw numeric progress value. Fractional
// values are rejected before range so the caller can report the more
// specific failure.
func ValidateProgress(p float64) error {
	if p != math.Trunc(p) {
		return ErrProgressNotInteger
	}
	if p < 0 || p > 100 {
		return ErrProgressOutOfRange
	}
	return nil
}

// StatusChange is a requested status mutation with its supporting
// fields.
type StatusChange struct {
	Status        EnrollmentStatus
	StoppedReason string
	ProviderID    string
}

// ValidateStatusPayload enforces the business rules tied to specific
// target statuses: stopping requires a reason, and activation or
// approval requires a linked provider.
func ValidateStatusPayload(change StatusChange) error {
	switch change.Status {
	case StatusStopped:
		if strings.TrimSpace(change.StoppedReason) == "" {
			return errors.New("a reason is required when stopping an enrollment")
		}
	case StatusActive, StatusApproved:
		if strings.TrimSpace(change.ProviderID) == "" {
			return fmt.Errorf("a provider must be linked before an enrollment can be marked %s", change.Status)
		}
	}
	return nil
}

// Enrollment tracks one provider's application with one payer.
type Enrollment struct {
	ID            uuid.UUID        `json:"id"`
	ProviderID    uuid.UUID        `json:"provider_id"`
	PayerName     string           `json:"payer_name"`
	Status        EnrollmentStatus `json:"status"`
	Progress      int              `json:"progress"`
	StoppedReason *string          `json:"stopped_reason,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IsTerminal reports whether the enrollment sits in a resting state
// that only restarts can leave.
func (e *Enrollment) IsTerminal() bool {
	return e.Status == StatusStopped || e.Status == StatusDenied
}
