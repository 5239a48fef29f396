package storage

import (
	"context"
	"maps"
	"sync"

	"github.com/matzehuels/coursemap/pkg/status"
)

// StaticCatalog serves a fixed catalog.
type StaticCatalog struct {
	Catalog *Catalog
}

// LoadCatalog returns the wrapped catalog.
func (s StaticCatalog) LoadCatalog(ctx context.Context) (*Catalog, error) {
	if s.Catalog == nil {
		return &Catalog{}, nil
	}
	return s.Catalog, nil
}

// Name returns "static".
func (StaticCatalog) Name() string { return "static" }

// Close does nothing.
func (StaticCatalog) Close() error { return nil }

// MemoryRecords keeps records in process memory.
type MemoryRecords struct {
	mu      sync.RWMutex
	records map[string]status.Map
}

// NewMemoryRecords creates an empty in-memory record store.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{records: make(map[string]status.Map)}
}

// Records returns a copy of the student's records.
func (m *MemoryRecords) Records(ctx context.Context, studentID string) (status.Map, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := maps.Clone(m.records[studentID])
	if out == nil {
		out = status.Map{}
	}
	return out, nil
}

// PutRecord stores one status.
func (m *MemoryRecords) PutRecord(ctx context.Context, studentID string, courseID int, st status.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.records[studentID]
	if st == status.Unset {
		delete(recs, courseID)
		return nil
	}
	if recs == nil {
		recs = status.Map{}
		m.records[studentID] = recs
	}
	recs[courseID] = st
	return nil
}

// Close does nothing.
func (m *MemoryRecords) Close() error { return nil }

var (
	_ CatalogSource = StaticCatalog{}
	_ RecordStore   = (*MemoryRecords)(nil)
)
