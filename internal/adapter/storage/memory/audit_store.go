package memory

import (
	"sync"

	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"
)

const defaultCapacity = 10000

// AuditStore is a bounded, thread-safe in-memory audit log backed by a
// ring buffer. When full, the oldest entries are dropped to make room
// for new ones. Append is O(1); Query walks newest to oldest under the
// same lock so readers always see a consistent snapshot.
type AuditStore struct {
	mu       sync.Mutex
	entries  []domain.AuditLogEntry
	head     int // next write position
	tail     int // oldest entry position
	count    int
	capacity int

	// Stats
	dropped int64
}

// NewAuditStore creates an audit store with the given capacity.
func NewAuditStore(capacity int) *AuditStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &AuditStore{
		entries:  make([]domain.AuditLogEntry, capacity),
		capacity: capacity,
	}
}

// Append adds an entry, dropping the oldest if the buffer is full.
func (s *AuditStore) Append(entry domain.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count >= s.capacity {
		// Drop oldest
		s.tail = (s.tail + 1) % s.capacity
		s.count--
		s.dropped++
	}

	s.entries[s.head] = entry
	s.head = (s.head + 1) % s.capacity
	s.count++
	return nil
}

// Query returns matching entries, most recent first, capped at q.Limit
// (DefaultAuditQueryLimit when unset).
func (s *AuditStore) Query(q ports.AuditQuery) []domain.AuditLogEntry {
	limit := q.Limit
	if limit <= 0 {
		limit = ports.DefaultAuditQueryLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.AuditLogEntry, 0, min(limit, s.count))
	for i := 0; i < s.count && len(result) < limit; i++ {
		// Walk backwards from the newest entry.
		idx := (s.head - 1 - i + s.capacity*2) % s.capacity
		if matches(&s.entries[idx], q.Filter) {
			result = append(result, s.entries[idx])
		}
	}
	return result
}

// Len returns the current number of entries in the store.
func (s *AuditStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Dropped returns the total number of entries evicted due to capacity.
func (s *AuditStore) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func matches(e *domain.AuditLogEntry, f ports.AuditFilter) bool {
	if f.Action != nil && e.Action != *f.Action {
		return false
	}
	if f.ResourceType != nil && e.ResourceType != *f.ResourceType {
		return false
	}
	if f.ResourceID != nil && e.ResourceID != *f.ResourceID {
		return false
	}
	if f.ActorUserID != nil {
		if e.Actor == nil || e.Actor.UserID != *f.ActorUserID {
			return false
		}
	}
	if f.Success != nil && e.Success != *f.Success {
		return false
	}
	if f.Method != nil && e.Method != *f.Method {
		return false
	}
	if f.Route != nil && e.Route != *f.Route {
		return false
	}
	if f.IPAddress != nil && e.IPAddress != *f.IPAddress {
		return false
	}
	return true
}
