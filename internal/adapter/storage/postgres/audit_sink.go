package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"credentialing-crm/internal/core/domain"
)

// AuditSink implements ports.AuditSink, giving audit entries a durable
// home beyond the in-memory ring buffer.
type AuditSink struct {
	pool Pool
}

// NewAuditSink creates a PostgreSQL-backed AuditSink.
func NewAuditSink(pool Pool) *AuditSink {
	return &AuditSink{pool: pool}
}

// Create inserts one audit entry. Actor and metadata are stored as
// JSONB.
func (s *AuditSink) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	var actorJSON []byte
	if entry.Actor != nil {
		b, err := json.Marshal(entry.Actor)
		if err != nil {
			return fmt.Errorf("marshal audit actor: %w", err)
		}
		actorJSON = b
	}

	var metadataJSON []byte
	if entry.Metadata != nil {
		b, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadataJSON = b
	}

	query := `INSERT INTO audit_logs (id, ts, actor, ip_address, user_agent, action, resource_type, resource_id, route, method, success, error, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		entry.ID, entry.Timestamp, actorJSON, entry.IPAddress, entry.UserAgent,
		string(entry.Action), entry.ResourceType, entry.ResourceID,
		entry.Route, entry.Method, entry.Success, entry.Error, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
