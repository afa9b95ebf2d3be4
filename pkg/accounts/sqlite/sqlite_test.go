package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rhxd/rhxd/pkg/accounts"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.db")
	store, err := Open(path)
	require.NoError(t, err)
	return store
}

func TestCreateLookup(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Create(ctx, "alice", "hunter2", "Alice", wire.AccessPrivileges(0x0F))
	require.NoError(t, err)

	acct, err := s.Lookup(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Login)
	assert.Equal(t, "Alice", acct.Nickname)
	assert.Equal(t, wire.AccessPrivileges(0x0F), acct.Access)
}

func TestLookupWrongPasswordOrMissingLoginBothErrNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Create(ctx, "alice", "hunter2", "Alice", 0))

	_, err := s.Lookup(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, accounts.ErrNotFound)

	_, err = s.Lookup(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestCreateDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Create(ctx, "alice", "hunter2", "Alice", 0))

	err := s.Create(ctx, "alice", "other", "Alice2", 0)
	assert.ErrorIs(t, err, accounts.ErrAlreadyExists)
}

func TestSetAccessAndPassword(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Create(ctx, "alice", "hunter2", "Alice", 0))

	require.NoError(t, s.SetAccess(ctx, "alice", wire.AccessPrivileges(0xFF)))
	acct, err := s.Lookup(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, wire.AccessPrivileges(0xFF), acct.Access)

	require.NoError(t, s.SetPassword(ctx, "alice", "newpass"))
	_, err = s.Lookup(ctx, "alice", "hunter2")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
	_, err = s.Lookup(ctx, "alice", "newpass")
	require.NoError(t, err)
}

func TestSetAccessMissingAccountIsNotFound(t *testing.T) {
	s := openTestStore(t)
	err := s.SetAccess(context.Background(), "nobody", wire.AccessPrivileges(0x01))
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestListOrderedByLogin(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Create(ctx, "carol", "x", "Carol", 0))
	require.NoError(t, s.Create(ctx, "alice", "x", "Alice", 0))
	require.NoError(t, s.Create(ctx, "bob", "x", "Bob", 0))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{list[0].Login, list[1].Login, list[2].Login})
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Delete(context.Background(), "nobody"))
}

func TestPasswordsAreHashedAtRest(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Create(ctx, "alice", "hunter2", "Alice", 0))

	var row accountModel
	require.NoError(t, s.db.WithContext(ctx).Where("login = ?", "alice").First(&row).Error)
	assert.NotEqual(t, "hunter2", row.PasswordHash)
	assert.NotEmpty(t, row.PasswordHash)
}

func TestReopenPersistsAccounts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "accounts.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, "alice", "hunter2", "Alice", wire.AccessPrivileges(0x01)))

	s2, err := Open(path)
	require.NoError(t, err)
	acct, err := s2.Lookup(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, wire.AccessPrivileges(0x01), acct.Access)
}
