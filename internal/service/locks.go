package service

import "sync"

// EventLocks hands out one reader/writer lock per event. Computations take
// the read side; writes that change what the engine sees take the write side.
// Locks of different events never contend.
type EventLocks struct {
	mu    sync.Mutex
	locks map[int64]*eventLock
}

type eventLock struct {
	sync.RWMutex
	refs int
}

// NewEventLocks creates an empty lock table.
func NewEventLocks() *EventLocks {
	return &EventLocks{locks: make(map[int64]*eventLock)}
}

// RLock takes the read lock of an event and returns its release function.
func (l *EventLocks) RLock(eventID int64) func() {
	lk := l.acquire(eventID)
	lk.RLock()
	return func() {
		lk.RUnlock()
		l.release(eventID, lk)
	}
}

// Lock takes the write lock of an event and returns its release function.
func (l *EventLocks) Lock(eventID int64) func() {
	lk := l.acquire(eventID)
	lk.Lock()
	return func() {
		lk.Unlock()
		l.release(eventID, lk)
	}
}

func (l *EventLocks) acquire(eventID int64) *eventLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[eventID]
	if !ok {
		lk = &eventLock{}
		l.locks[eventID] = lk
	}
	lk.refs++
	return lk
}

// release drops the entry once nobody holds or waits on it.
func (l *EventLocks) release(eventID int64, lk *eventLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, eventID)
	}
}

func (l *EventLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
