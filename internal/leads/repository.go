package leads

import (
	"sync"
)

// RecentStore keeps a bounded in-memory window of recent submissions for
// the admin surface. It is operational visibility only: the CRM owns the
// durable copy of every lead, so nothing here survives a restart.
type RecentStore struct {
	mu      sync.RWMutex
	records []*LeadRecord
	cap     int
}

// NewRecentStore creates a store holding at most capacity records.
func NewRecentStore(capacity int) *RecentStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &RecentStore{cap: capacity}
}

// Add records a submission, evicting the oldest entry when full.
func (s *RecentStore) Add(rec *LeadRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
}

// List returns the stored records, newest first.
func (s *RecentStore) List() []*LeadRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*LeadRecord, len(s.records))
	for i, rec := range s.records {
		out[len(s.records)-1-i] = rec
	}
	return out
}
