package concurrency

import (
	"sync"
)

// LockManager hands out named mutexes, one per key. Callers that share a
// key serialize against each other; unrelated keys never contend. The
// admission guard keys these by track so awards to different tracks
// admit concurrently.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns the mutex for the given key, creating it on first use.
// Locks are never released from the map; key cardinality is bounded by
// the number of live tracks.
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
