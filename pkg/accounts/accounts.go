// Package accounts defines the persistent named-account store the core
// protocol looks up at Login but does not itself implement.
package accounts

import (
	"context"
	"errors"

	"github.com/rhxd/rhxd/internal/hotline/wire"
)

// ErrNotFound is returned by Lookup when no account matches the login.
var ErrNotFound = errors.New("accounts: not found")

// ErrAlreadyExists is returned by Create when the login is already taken.
var ErrAlreadyExists = errors.New("accounts: already exists")

// Account is one named Hotline login.
type Account struct {
	Login    string
	Nickname string
	Access   wire.AccessPrivileges
}

// Store is the persistent account collaborator. The core protocol depends
// only on this interface; pkg/accounts/memory and pkg/accounts/sqlite
// provide implementations.
type Store interface {
	// Lookup authenticates login/password (both already unscrambled) and
	// returns the matching Account, or ErrNotFound on any mismatch —
	// deliberately not distinguishing "no such login" from "wrong
	// password" so a client cannot enumerate valid logins.
	Lookup(ctx context.Context, login, password string) (*Account, error)

	// Create adds a new named account with the given password in the
	// clear; implementations are responsible for at-rest hashing.
	Create(ctx context.Context, login, password, nickname string, access wire.AccessPrivileges) error

	// SetAccess updates an existing account's access privileges.
	SetAccess(ctx context.Context, login string, access wire.AccessPrivileges) error

	// SetPassword updates an existing account's password.
	SetPassword(ctx context.Context, login, password string) error

	// Delete removes an account. Deleting a login that does not exist is
	// not an error.
	Delete(ctx context.Context, login string) error

	// List returns every account, ordered by login.
	List(ctx context.Context) ([]Account, error)
}
