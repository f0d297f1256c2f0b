// Package locker provides one mutex per key, so work on unrelated auctions or
// sellers never waits on a shared lock.
package locker

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed hands out a mutex per key. Entries are dropped once no goroutine holds
// or waits for them.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Keyed locker
func New() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Lock blocks until key is held and returns the function that releases it
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}

// Len reports how many keys are currently held or awaited
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
