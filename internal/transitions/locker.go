package transitions

import "sync"

// spoolLocker serializes transitions per spool within this process. Entries
// are tiny and spool counts are bounded in practice, so locks are never
// reclaimed.
type spoolLocker struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newSpoolLocker() *spoolLocker {
	return &spoolLocker{locks: map[uint]*sync.Mutex{}}
}

// Lock blocks until the caller holds the mutex for the spool and returns the
// matching unlock func.
func (l *spoolLocker) Lock(spoolID uint) func() {
	l.mu.Lock()
	lock, ok := l.locks[spoolID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[spoolID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
