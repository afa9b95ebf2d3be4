// Package handlers implements the seven core transaction handlers
// (Login, Agreed, SendChat, SendInstantMsg, GetUserNameList,
// GetClientInfoText, GetFileNameList), dispatched through a command table
// keyed by transaction kind.
package handlers

import (
	"context"

	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/session"
	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rhxd/rhxd/pkg/accounts"
)

// Config is the subset of server configuration a handler needs. It is
// populated from pkg/config.Config by the server package, keeping the core
// protocol free of a dependency on the ambient configuration stack.
type Config struct {
	ServerName         string
	ServerVersion      uint16
	AllowGuest         bool
	DefaultUserAccess  wire.AccessPrivileges
	DefaultGuestAccess wire.AccessPrivileges
}

// Context carries everything a handler needs to process one transaction.
type Context struct {
	Ctx       context.Context
	Session   *session.Session
	Registry  *session.Manager
	Accounts  accounts.Store
	Config    Config
	RequestID uint32
}

// Reply is a handler's successful result: the field table for a reply
// transaction. A nil Reply means the handler sends no reply (SendChat,
// SendInstantMsg).
type Reply struct {
	Fields []field.Field
}

// NoReply is returned by handlers that publish an event but send nothing
// back to the caller.
var NoReply = (*Reply)(nil)

// Handler processes one transaction's fields and returns the reply to send,
// or an error. A returned *herr.Error is reported on the wire with its
// code and message; any other error is logged and reported as
// herr.UnknownError without leaking detail.
type Handler func(hctx *Context, fields []field.Field) (*Reply, error)

func reply(fields ...field.Field) *Reply {
	return &Reply{Fields: fields}
}
