package acceptance

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps acceptance records in-process. State is lost on
// restart. With ttl == 0 acceptance never lapses while the process runs;
// a non-zero ttl makes records expire lazily on lookup.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		ttl:     ttl,
	}
}

func (m *MemoryStore) IsAccepted(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	rec, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if m.ttl > 0 && time.Since(rec.AcceptedAt) > m.ttl {
		m.mu.Lock()
		// re-check under the write lock, a concurrent accept may have
		// refreshed the record
		if cur, ok := m.records[key]; ok && time.Since(cur.AcceptedAt) > m.ttl {
			delete(m.records, key)
		}
		m.mu.Unlock()
		return m.IsAccepted(ctx, key)
	}
	return true, nil
}

func (m *MemoryStore) Accept(ctx context.Context, key, fingerprint string) (Record, error) {
	rec := Record{
		Key:         key,
		Fingerprint: fingerprint,
		AcceptedAt:  time.Now(),
	}
	m.mu.Lock()
	m.records[key] = rec
	m.mu.Unlock()
	return rec, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
