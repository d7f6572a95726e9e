package pipeline

import (
	"sync"

	"github.com/wonny/breakwatch/internal/contracts"
)

// Publisher receives every completed snapshot
type Publisher interface {
	Publish(snapshot *contracts.Snapshot)
}

// SnapshotStore keeps the latest snapshot for readers
type SnapshotStore struct {
	mu     sync.RWMutex
	latest *contracts.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Latest returns the most recent snapshot, or nil before the first refresh
func (s *SnapshotStore) Latest() *contracts.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Publish replaces the latest snapshot
func (s *SnapshotStore) Publish(snapshot *contracts.Snapshot) {
	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()
}
