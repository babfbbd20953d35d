package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

// MemoryStorage is an in-memory Storage implementation, useful for tests and
// simple single-process deployments.
type MemoryStorage struct {
	mu      sync.RWMutex
	charges map[string]ChargeRecord
}

func NewMemory() *MemoryStorage {
	return &MemoryStorage{charges: make(map[string]ChargeRecord)}
}

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

func (m *MemoryStorage) SaveCharge(ctx context.Context, rec ChargeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charges[rec.ID] = rec
	return nil
}

func (m *MemoryStorage) GetCharge(ctx context.Context, id string) (*ChargeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.charges[id]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (m *MemoryStorage) ListCharges(ctx context.Context, limit int) ([]ChargeRecord, error) {
	m.mu.RLock()
	out := lo.Values(m.charges)
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStorage) PruneCharges(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, rec := range m.charges {
		if rec.CreatedAt.Before(before) {
			delete(m.charges, id)
			n++
		}
	}
	return n, nil
}
