package payroll

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	submissions []Submission
}

func NewMemoryStore(seed ...Submission) *MemoryStore {
	store := &MemoryStore{}
	for _, sub := range seed {
		store.submissions = append(store.submissions, sub.clone())
	}
	return store
}

func (m *MemoryStore) List(_ context.Context) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Submission, len(m.submissions))
	for i, sub := range m.submissions {
		out[i] = sub.clone()
	}
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, submissions []Submission) error {
	next := make([]Submission, len(submissions))
	for i, sub := range submissions {
		next[i] = sub.clone()
	}
	m.mu.Lock()
	m.submissions = next
	m.mu.Unlock()
	return nil
}
