package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/fuel-planner/internal/storage"
	"github.com/google/uuid"
)

// MemoryStorage is the in-process storage.Storage used in local mode and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	plans   map[string]storage.PlanDocument
	exports map[uuid.UUID]storage.ExportMeta
	now     func() time.Time
}

func New() *MemoryStorage {
	return &MemoryStorage{
		plans:   make(map[string]storage.PlanDocument),
		exports: make(map[uuid.UUID]storage.ExportMeta),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStorage) Backend() string { return "memory" }

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) GetPlan(_ context.Context, ownerUserID string) (storage.PlanDocument, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.plans[ownerUserID]
	if !ok {
		return storage.PlanDocument{}, false, nil
	}
	doc.Payload = append([]byte(nil), doc.Payload...)
	return doc, true, nil
}

func (m *MemoryStorage) PutPlan(_ context.Context, ownerUserID string, payload []byte) (storage.PlanDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	doc, ok := m.plans[ownerUserID]
	if !ok {
		doc = storage.PlanDocument{OwnerUserID: ownerUserID, CreatedAt: now}
	}
	if !now.After(doc.UpdatedAt) {
		now = doc.UpdatedAt.Add(time.Microsecond)
	}
	doc.Payload = append([]byte(nil), payload...)
	doc.UpdatedAt = now
	m.plans[ownerUserID] = doc

	out := doc
	out.Payload = append([]byte(nil), doc.Payload...)
	return out, nil
}

func (m *MemoryStorage) CreateExport(_ context.Context, meta *storage.ExportMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	now := m.now()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	m.exports[meta.ID] = *meta
	return nil
}

func (m *MemoryStorage) GetExport(_ context.Context, id uuid.UUID) (*storage.ExportMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meta, ok := m.exports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &meta, nil
}

func (m *MemoryStorage) ListExports(_ context.Context, ownerUserID string, limit, offset int) ([]storage.ExportMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []storage.ExportMeta{}
	for _, e := range m.exports {
		if e.OwnerUserID == ownerUserID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []storage.ExportMeta{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (m *MemoryStorage) DeleteExport(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.exports[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.exports, id)
	return nil
}
