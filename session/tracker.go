package session

import (
	"sync"

	"github.com/scylladb/go-set/u32set"
)

// Tracker keeps track of the IDs of unknown packets a session received, so that each is only reported once.
type Tracker struct {
	unknown *u32set.Set
	mu      sync.Mutex
}

func NewTracker() *Tracker {
	return &Tracker{unknown: u32set.New()}
}

// Unknown records an unknown packet ID. It returns true the first time the ID is seen.
func (t *Tracker) Unknown(id uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unknown.Has(id) {
		return false
	}
	t.unknown.Add(id)
	return true
}

// UnknownIDs returns the unknown packet IDs seen so far.
func (t *Tracker) UnknownIDs() []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unknown.List()
}
