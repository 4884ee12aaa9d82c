package syncer

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per (kind, identity). Entries are dropped
// once nobody holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

func lockKey(kind models.Kind, identity string) string {
	return string(kind) + "\x00" + identity
}

// Lock blocks until the key is free and returns the matching unlock.
func (k *keyedMutex) Lock(kind models.Kind, identity string) func() {
	return k.lock(lockKey(kind, identity))
}

// LockAll takes the lock of every kind for each identity. Keys are taken
// in sorted order so two callers never wait on each other crosswise.
func (k *keyedMutex) LockAll(identities ...string) func() {
	seen := make(map[string]bool)
	var keys []string
	for _, id := range identities {
		for _, kind := range models.AllKinds {
			key := lockKey(kind, id)
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)

	unlocks := make([]func(), 0, len(keys))
	for _, key := range keys {
		unlocks = append(unlocks, k.lock(key))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
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

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
