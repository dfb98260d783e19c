package history

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and for running without a
// database.
type MemoryStore struct {
	mu       sync.Mutex
	readings []Reading
	nextID   uint

	// InsertError, if set, will be returned by Insert.
	InsertError error

	// Closed tracks if Close was called
	Closed bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends readings.
func (m *MemoryStore) Insert(readings []Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, r := range readings {
		m.nextID++
		r.ID = m.nextID
		m.readings = append(m.readings, r)
	}
	return nil
}

// Between returns readings of kind in [start, end], oldest first.
func (m *MemoryStore) Between(kind Kind, start, end time.Time) ([]Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Reading{}
	for _, r := range m.readings {
		if r.Kind == kind && !r.RecordedAt.Before(start) && !r.RecordedAt.After(end) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].SensorID < out[j].SensorID
	})
	return out, nil
}

// DeleteBefore removes readings older than t.
func (m *MemoryStore) DeleteBefore(t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.readings[:0]
	var n int64
	for _, r := range m.readings {
		if r.RecordedAt.Before(t) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.readings = kept
	return n, nil
}

// Len returns the number of stored readings.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.readings)
}

// Close marks the store as closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}
