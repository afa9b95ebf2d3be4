package memory

import (
	"context"
	"testing"

	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rhxd/rhxd/pkg/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

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
	s := New()
	require.NoError(t, s.Create(ctx, "alice", "hunter2", "Alice", 0))

	_, err := s.Lookup(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, accounts.ErrNotFound)

	_, err = s.Lookup(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestCreateDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "alice", "hunter2", "Alice", 0))

	err := s.Create(ctx, "alice", "other", "Alice2", 0)
	assert.ErrorIs(t, err, accounts.ErrAlreadyExists)
}

func TestSetAccessAndPassword(t *testing.T) {
	ctx := context.Background()
	s := New()
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

func TestListOrderedByLogin(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, "carol", "x", "Carol", 0))
	require.NoError(t, s.Create(ctx, "alice", "x", "Alice", 0))
	require.NoError(t, s.Create(ctx, "bob", "x", "Bob", 0))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{list[0].Login, list[1].Login, list[2].Login})
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	s := New()
	assert.NoError(t, s.Delete(context.Background(), "nobody"))
}
