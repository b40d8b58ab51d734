package shortlist

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]map[string]time.Time)}
}

func (m *MemoryStore) Put(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		byCandidate, ok := m.jobs[e.JobID]
		if !ok {
			byCandidate = make(map[string]time.Time)
			m.jobs[e.JobID] = byCandidate
		}
		byCandidate[e.CandidateID] = e.DecidedAt
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, jobID, candidateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byCandidate, ok := m.jobs[jobID]
	if !ok {
		return nil
	}
	delete(byCandidate, candidateID)
	if len(byCandidate) == 0 {
		delete(m.jobs, jobID)
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, jobID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byCandidate := m.jobs[jobID]
	entries := make([]Entry, 0, len(byCandidate))
	for candidateID, decidedAt := range byCandidate {
		entries = append(entries, Entry{JobID: jobID, CandidateID: candidateID, DecidedAt: decidedAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CandidateID < entries[j].CandidateID })
	return entries, nil
}

func (m *MemoryStore) Close() error { return nil }
