// Package session holds the single session token of a client instance.
//
// The token is opaque to the client. The events API treats it as the numeric id
// of the logged-in user, so the stores never inspect or validate it.
package session

import (
	"errors"
	"sync"
)

// ErrNoSession is returned when an operation needs a session token and none is stored.
var ErrNoSession = errors.New("session: no session token")

// Store is a durable slot for one session token.
//
// Save replaces any prior value. Get reports false when no session exists.
// Clear removes the token; clearing an empty store is not an error.
type Store interface {
	Save(token string) error
	Get() (string, bool)
	Clear() error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = token != ""
	return nil
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.set
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}

// Synchronized serializes access to s. Request-bound stores are not safe for
// concurrent use on their own, but one page may issue several API calls at once.
func Synchronized(s Store) Store {
	if _, ok := s.(*lockedStore); ok {
		return s
	}
	return &lockedStore{store: s}
}

type lockedStore struct {
	mu    sync.Mutex
	store Store
}

func (s *lockedStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(token)
}

func (s *lockedStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get()
}

func (s *lockedStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear()
}
