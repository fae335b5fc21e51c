// internal/registry/keyed_mutex.go
package registry

import (
	"sync"

	"splitflow/internal/domain"
)

// keyedMutex hands out one mutex per identity. Entries are reference counted
// and dropped once nobody holds or waits on them, so the map only grows with
// concurrent callers, not with the number of accounts.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[domain.Identity]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[domain.Identity]*refMutex)}
}

// Lock blocks until id's mutex is held and returns the matching unlock.
func (k *keyedMutex) Lock(id domain.Identity) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
