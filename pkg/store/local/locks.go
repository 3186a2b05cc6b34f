package local

import (
	"sort"
	"sync"
)

// Named critical sections. Cascading operations span two logical resources
// (deleting a staff member rewrites game headers), so the sections are
// acquired in sorted name order to rule out lock-order inversion.
const (
	lockGames     = "games"
	lockPersonnel = "personnel"
	lockRoster    = "roster"
)

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(name string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[name]
	if !ok {
		m = &sync.Mutex{}
		k.locks[name] = m
	}
	return m
}

// Lock acquires the named sections in sorted order.
func (k *keyedMutex) Lock(names ...string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		k.get(name).Lock()
	}
}

// Unlock releases the named sections in reverse sorted order.
func (k *keyedMutex) Unlock(names ...string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for i := len(sorted) - 1; i >= 0; i-- {
		k.get(sorted[i]).Unlock()
	}
}
