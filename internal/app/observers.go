package app

import (
	"slices"
	"sync"
)

// observerSet fans one value out to registered callbacks.
type observerSet[T any] struct {
	mu    sync.Mutex
	next  int
	funcs map[int]func(T)
}

// add registers fn and returns a func that removes it again.
func (s *observerSet[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.funcs == nil {
		s.funcs = map[int]func(T){}
	}
	id := s.next
	s.next++
	s.funcs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.funcs, id)
		})
	}
}

// notify calls every registered callback in registration order.
func (s *observerSet[T]) notify(v T) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.funcs))
	for id := range s.funcs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	funcs := make([]func(T), 0, len(ids))
	for _, id := range ids {
		funcs = append(funcs, s.funcs[id])
	}
	s.mu.Unlock()

	for _, fn := range funcs {
		fn(v)
	}
}
