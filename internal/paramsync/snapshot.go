package paramsync

import (
	"sync"
	"time"

	"github.com/muurk/wave/internal/painter"
)

// DefaultHistorySize is how many acknowledged snapshots are retained
const DefaultHistorySize = 10

// Snapshot is a params state the device is known to hold
type Snapshot struct {
	// Params is the acknowledged state
	Params painter.Params

	// Seq is the form sequence number that produced Params
	Seq uint64

	// Timestamp when the device acknowledged (or reported) Params
	Timestamp time.Time

	// Description of the operation that produced the snapshot
	Description string
}

// SnapshotStore keeps the most recent acknowledged snapshots, newest last.
// Sequence numbers only move forward: an older acknowledgement arriving
// late is discarded.
type SnapshotStore struct {
	mutex     sync.RWMutex
	snapshots []Snapshot
	max       int
}

// NewSnapshotStore creates a store retaining at most max snapshots
func NewSnapshotStore(max int) *SnapshotStore {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &SnapshotStore{
		snapshots: make([]Snapshot, 0, max),
		max:       max,
	}
}

// Add records a snapshot. It returns false, leaving the store untouched,
// when seq is not newer than the latest snapshot.
func (s *SnapshotStore) Add(params painter.Params, seq uint64, description string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if n := len(s.snapshots); n > 0 && seq <= s.snapshots[n-1].Seq {
		return false
	}

	s.snapshots = append(s.snapshots, Snapshot{
		Params:      params.Clone(),
		Seq:         seq,
		Timestamp:   time.Now(),
		Description: description,
	})
	if len(s.snapshots) > s.max {
		s.snapshots = s.snapshots[1:]
	}
	return true
}

// Latest returns the newest snapshot
func (s *SnapshotStore) Latest() (Snapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.snapshots) == 0 {
		return Snapshot{}, false
	}
	latest := s.snapshots[len(s.snapshots)-1]
	latest.Params = latest.Params.Clone()
	return latest, true
}

// All returns copies of every retained snapshot, oldest first
func (s *SnapshotStore) All() []Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Snapshot, len(s.snapshots))
	for i, snap := range s.snapshots {
		snap.Params = snap.Params.Clone()
		out[i] = snap
	}
	return out
}

// Len returns the number of retained snapshots
func (s *SnapshotStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.snapshots)
}
