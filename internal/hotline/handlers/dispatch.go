package handlers

import (
	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/herr"
	"github.com/rhxd/rhxd/internal/hotline/transaction"
	"github.com/rhxd/rhxd/internal/logger"
)

// Command pairs a transaction kind with its handler and a label for
// logging.
type Command struct {
	Name    string
	Handler Handler
}

// DispatchTable maps transaction kind to its Command. A kind absent from
// this table is deferred/reserved (spec §6): Dispatch reports it as
// UnknownError and logs the attempt, rather than dropping the connection.
var DispatchTable = map[uint16]*Command{
	transaction.KindLogin:             {Name: "Login", Handler: Login},
	transaction.KindAgreed:            {Name: "Agreed", Handler: Agreed},
	transaction.KindSendChat:          {Name: "SendChat", Handler: SendChat},
	transaction.KindSendInstantMsg:    {Name: "SendInstantMsg", Handler: SendInstantMsg},
	transaction.KindGetUserNameList:   {Name: "GetUserNameList", Handler: GetUserNameList},
	transaction.KindGetClientInfoText: {Name: "GetClientInfoText", Handler: GetClientInfoText},
	transaction.KindGetFileNameList:   {Name: "GetFileNameList", Handler: GetFileNameList},
}

// Dispatch looks up kind in DispatchTable and runs its handler. For a kind
// with no registered handler, it returns herr.NotImplemented rather than
// invoking anything.
func Dispatch(kind uint16, hctx *Context, fields []field.Field) (*Reply, string, error) {
	cmd, ok := DispatchTable[kind]
	if !ok {
		logger.WarnCtx(hctx.Ctx, "hotline: unimplemented transaction kind", "kind", kind)
		return nil, "", herr.NotImplemented(kind)
	}
	reply, err := cmd.Handler(hctx, fields)
	return reply, cmd.Name, err
}
