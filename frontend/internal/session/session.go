// Package session keeps the logged-in user's token and email between requests.
// Both values are stored and cleared together; a holder with only one of them is logged out.
package session

import (
	"errors"
	"sync"

	"github.com/portal-dev/portal/shared/domain"
)

var ErrNoSession = errors.New("no session")

type Store interface {
	Load() (domain.Session, error)
	Save(s domain.Session) error
	Clear() error
}

// Token returns the stored bearer token, or "" when nobody is logged in.
func Token(s Store) string {
	sess, err := s.Load()
	if err != nil {
		return ""
	}
	return sess.Token
}

// MemoryStore is a Store for tests and for short-lived commands.
type MemoryStore struct {
	mu   sync.Mutex
	sess domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sess.Valid() {
		return domain.Session{}, ErrNoSession
	}
	return m.sess, nil
}

func (m *MemoryStore) Save(s domain.Session) error {
	if !s.Valid() {
		return errors.New("session needs both token and email")
	}
	m.mu.Lock()
	m.sess = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.sess = domain.Session{}
	m.mu.Unlock()
	return nil
}
