package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/soundchunk/pkg/chunk"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (m *Memory) Put(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec = cloneRecord(rec)
	rec.Revision = m.records[rec.ID].Revision + 1
	rec.UpdatedAt = now()
	m.records[rec.ID] = rec
	return cloneRecord(rec), nil
}

func (m *Memory) UpdateEdges(_ context.Context, id string, edges []chunk.Edge) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Graph = rec.Graph.WithEdges(edges)
	rec.Revision++
	rec.UpdatedAt = now()
	m.records[id] = rec
	return cloneRecord(rec), nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, cloneRecord(rec))
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }

func cloneRecord(rec Record) Record {
	rec.Graph = rec.Graph.Clone()
	return rec
}

// sortRecords orders by UpdatedAt descending, then id.
func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var _ Store = (*Memory)(nil)
