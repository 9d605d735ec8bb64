// Package lock provides per-key mutual exclusion.
package lock

import "sync"

// Keyed hands out one mutex per key. Entries are reference counted and
// dropped once no goroutine holds or waits for them.
type Keyed[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyed creates an empty keyed mutex.
func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{locks: make(map[K]*entry)}
}

// Lock blocks until key is free and returns the function that releases it.
func (k *Keyed[K]) Lock(key K) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// TryLock acquires key only if it is free.
func (k *Keyed[K]) TryLock(key K) (unlock func(), ok bool) {
	k.mu.Lock()
	if _, busy := k.locks[key]; busy {
		k.mu.Unlock()
		return nil, false
	}
	e := &entry{refs: 1}
	e.mu.Lock()
	k.locks[key] = e
	k.mu.Unlock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}, true
}

func (k *Keyed[K]) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
