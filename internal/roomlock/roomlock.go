// Package roomlock provides per-room mutual exclusion. Every room mutation
// runs its local critical section (state check, authorize, reconcile,
// persist, destination computation) under the room's lock; network I/O
// happens after release.
package roomlock

import (
	"context"
	"sync"
)

// Lock is a keyed asynchronous mutex. Acquisitions for the same room id are
// serialized; distinct rooms never contend. Waiters park on a channel rather
// than spinning or holding an OS thread.
type Lock struct {
	mu    sync.Mutex
	rooms map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// New creates an empty lock table.
func New() *Lock {
	return &Lock{rooms: make(map[string]*entry)}
}

// Acquire takes the lock for roomID, suspending until it is free or ctx is
// done. The returned release function must be called on every exit path;
// calling it more than once is safe. Cancellation is honored only while
// waiting: once acquired, the critical section runs to completion.
func (l *Lock) Acquire(ctx context.Context, roomID string) (func(), error) {
	l.mu.Lock()
	e := l.rooms[roomID]
	if e == nil {
		e = &entry{sem: make(chan struct{}, 1)}
		l.rooms[roomID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(roomID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-e.sem
			l.unref(roomID, e)
		})
	}
	return release, nil
}

// Held reports whether roomID is currently locked or waited on. Test hook.
func (l *Lock) Held(roomID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.rooms[roomID]
	return e != nil && len(e.sem) > 0
}

func (l *Lock) unref(roomID string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.rooms, roomID)
	}
}
