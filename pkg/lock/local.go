package lock

import (
	"context"
	"sync"
)

// LocalLocker serializa por ítem dentro del proceso. Solo protege un nodo.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[int]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker construye el locker en proceso.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[int]*slot)}
}

// Lock espera el turno del ítem o la cancelación del contexto.
func (l *LocalLocker) Lock(ctx context.Context, itemID int) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[itemID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[itemID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(itemID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(itemID, s)
		})
	}, nil
}

func (l *LocalLocker) release(itemID int, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, itemID)
	}
}
