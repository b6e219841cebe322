package ledger

import (
	"strings"
	"sync"
)

// PartyLocker serializes in-process writers of one (user, party) ledger.
// Lock blocks until the party is free and returns the matching unlock.
type PartyLocker interface {
	Lock(userID, partyName string) (unlock func())
}

type partyLock struct {
	mu   sync.Mutex
	refs int
}

// MutexPartyLocker hands out one mutex per party. Entries are dropped once
// no goroutine holds or waits on them, so the map stays bounded by the
// number of parties being written concurrently.
type MutexPartyLocker struct {
	mapMu sync.Mutex
	locks map[string]*partyLock
}

// NewMutexPartyLocker creates an empty locker
func NewMutexPartyLocker() *MutexPartyLocker {
	return &MutexPartyLocker{locks: make(map[string]*partyLock)}
}

// Lock acquires the mutex of one party
func (l *MutexPartyLocker) Lock(userID, partyName string) func() {
	key := partyKey(userID, partyName)

	l.mapMu.Lock()
	pl, ok := l.locks[key]
	if !ok {
		pl = &partyLock{}
		l.locks[key] = pl
	}
	pl.refs++
	l.mapMu.Unlock()

	pl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			pl.mu.Unlock()
			l.mapMu.Lock()
			pl.refs--
			if pl.refs == 0 {
				delete(l.locks, key)
			}
			l.mapMu.Unlock()
		})
	}
}

// size reports how many parties currently have a lock entry
func (l *MutexPartyLocker) size() int {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()
	return len(l.locks)
}

func partyKey(userID, partyName string) string {
	return userID + "/" + strings.TrimSpace(partyName)
}

var _ PartyLocker = (*MutexPartyLocker)(nil)
