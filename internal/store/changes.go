package store

import (
	"sync"
	"time"

	"github.com/inkwellpress/editorial-desk/internal/domain"
)

// Op names the kind of write that produced a Change.
type Op string

// Change operations.
const (
	OpReplace Op = "replace" // SaveData with a whole document
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
)

// Change is published after every successful save.
type Change struct {
	Op         Op
	Collection string // empty for OpReplace
	ID         string // empty for OpReplace
	// Data is the saved document. Every subscriber receives its own copy.
	Data *domain.AppData
	At   time.Time
}

type subscribers struct {
	mu     sync.RWMutex
	nextID int
	fns    map[int]func(Change)
}

// Subscribe registers fn to receive every Change until the returned cancel func is called.
// fn runs synchronously on the saving goroutine, after the store lock is released, so it may
// read or write the store.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()

	if s.subs.fns == nil {
		s.subs.fns = make(map[int]func(Change))
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subs.mu.Lock()
			delete(s.subs.fns, id)
			s.subs.mu.Unlock()
		})
	}
}

func (s *Store) publish(c Change, doc *domain.AppData) {
	s.subs.mu.RLock()
	fns := make([]func(Change), 0, len(s.subs.fns))
	for _, fn := range s.subs.fns {
		fns = append(fns, fn)
	}
	s.subs.mu.RUnlock()

	c.At = time.Now().UTC()
	for _, fn := range fns {
		c.Data = doc.Clone()
		fn(c)
	}
}
