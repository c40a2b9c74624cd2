package database

import (
	"sort"
	"sync"
)

// cardLocks serializes read-modify-write cycles on a card within this process.
// Entries are reference counted and dropped once no goroutine holds or awaits them.
type cardLocks struct {
	mu    sync.Mutex
	locks map[string]*cardLock
}

type cardLock struct {
	mu   sync.Mutex
	refs int
}

func newCardLocks() *cardLocks {
	return &cardLocks{locks: make(map[string]*cardLock)}
}

// lock acquires the locks of every distinct id in ascending order and
// returns the function that releases them.
func (l *cardLocks) lock(ids ...string) func() {
	ordered := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	held := make([]*cardLock, 0, len(ordered))
	for _, id := range ordered {
		entry := l.acquire(id)
		entry.mu.Lock()
		held = append(held, entry)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ordered[i])
		}
	}
}

func (l *cardLocks) acquire(id string) *cardLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &cardLock{}
		l.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (l *cardLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *cardLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
