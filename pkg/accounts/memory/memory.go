// Package memory provides an in-process accounts.Store, used for
// guest-only or ephemeral deployments and in unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rhxd/rhxd/pkg/accounts"
)

type record struct {
	password string
	nickname string
	access   wire.AccessPrivileges
}

// Store is a mutex-protected map keyed by login. Passwords are kept in
// plain form, matching the core's "obfuscation only" treatment of the wire
// scramble; it is not suitable for deployments that need at-rest hashing —
// pkg/accounts/sqlite is.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]record
}

// New returns an empty Store.
func New() *Store {
	return &Store{accounts: make(map[string]record)}
}

func (s *Store) Lookup(_ context.Context, login, password string) (*accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[login]
	if !ok || rec.password != password {
		return nil, accounts.ErrNotFound
	}

	return &accounts.Account{Login: login, Nickname: rec.nickname, Access: rec.access}, nil
}

func (s *Store) Create(_ context.Context, login, password, nickname string, access wire.AccessPrivileges) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[login]; ok {
		return accounts.ErrAlreadyExists
	}

	s.accounts[login] = record{password: password, nickname: nickname, access: access}
	return nil
}

func (s *Store) SetAccess(_ context.Context, login string, access wire.AccessPrivileges) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[login]
	if !ok {
		return accounts.ErrNotFound
	}
	rec.access = access
	s.accounts[login] = rec
	return nil
}

func (s *Store) SetPassword(_ context.Context, login, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[login]
	if !ok {
		return accounts.ErrNotFound
	}
	rec.password = password
	s.accounts[login] = rec
	return nil
}

func (s *Store) Delete(_ context.Context, login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, login)
	return nil
}

func (s *Store) List(_ context.Context) ([]accounts.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]accounts.Account, 0, len(s.accounts))
	for login, rec := range s.accounts {
		out = append(out, accounts.Account{Login: login, Nickname: rec.nickname, Access: rec.access})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out, nil
}
