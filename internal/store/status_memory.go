package store

import (
    "context"
    "encoding/json"
    "sync"
)

// MemoryStatus is an in-process status store for single-instance deployments and tests.
// Metadata goes through a JSON round trip so readers see the same shapes as with Redis.
type MemoryStatus struct {
    mu   sync.RWMutex
    jobs map[string]Status
}

func NewMemoryStatus() *MemoryStatus {
    return &MemoryStatus{jobs: make(map[string]Status)}
}

func (s *MemoryStatus) Set(_ context.Context, jobID string, st Status) error {
    if st.Metadata != nil {
        b, err := json.Marshal(st.Metadata)
        if err != nil { return err }
        var m map[string]interface{}
        if err := json.Unmarshal(b, &m); err != nil { return err }
        st.Metadata = m
    }
    s.mu.Lock()
    s.jobs[jobID] = st
    s.mu.Unlock()
    return nil
}

func (s *MemoryStatus) Get(_ context.Context, jobID string) (Status, bool, error) {
    s.mu.RLock()
    st, ok := s.jobs[jobID]
    s.mu.RUnlock()
    return st, ok, nil
}

func (s *MemoryStatus) Close() error { return nil }
