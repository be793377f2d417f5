package pipeline

import "sync"

// UserLocks hands out one mutex per user so that fusion runs for the same
// user are serialized while runs for different users proceed in parallel.
// Entries are removed when no run holds or waits for them.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu      sync.Mutex
	holders int
}

// NewUserLocks creates an empty lock table.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[string]*userLock)}
}

// Lock blocks until the user's lock is held and returns the function that
// releases it.
func (l *UserLocks) Lock(userID string) (unlock func()) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.holders++
	l.mu.Unlock()

	ul.mu.Lock()

	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.holders--
		if ul.holders == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of users with a held or awaited lock.
func (l *UserLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
