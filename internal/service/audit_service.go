package service

import (
	"context"
	"time"

	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type auditService struct {
	store ports.AuditStore
	sink  ports.AuditSink
	log   zerolog.Logger
}

// NewAuditService creates a new audit recorder backed by the in-memory
// store. If sink is non-nil, entries are also forwarded to durable
// storage off the request path.
func NewAuditService(store ports.AuditStore, sink ports.AuditSink, log zerolog.Logger) ports.AuditRecorder {
	return &auditService{store: store, sink: sink, log: log}
}

// Record captures one audit entry. The in-memory append completes
// before Record returns so a subsequent Query sees the entry; durable
// forwarding is fire-and-forget. Capture failures never propagate to
// the caller.
func (s *auditService) Record(ctx context.Context, entry *domain.AuditLogEntry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("audit: panic while recording entry")
		}
	}()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.store.Append(*entry); err != nil {
		s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("audit: failed to append entry")
	}

	s.log.Info().
		Str("action", string(entry.Action)).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("ip", entry.IPAddress).
		Bool("success", entry.Success).
		Msg("audit")

	if s.sink != nil {
		snapshot := *entry
		go func() {
			if err := s.sink.Create(context.Background(), &snapshot); err != nil {
				s.log.Warn().Err(err).Str("action", string(snapshot.Action)).Msg("audit: failed to persist entry")
			}
		}()
	}
}

// Query returns entries from the in-memory store, most recent first.
func (s *auditService) Query(ctx context.Context, q ports.AuditQuery) []domain.AuditLogEntry {
	return s.store.Query(q)
}
