package handlers

import (
	"github.com/rhxd/rhxd/internal/hotline/broadcast"
	"github.com/rhxd/rhxd/internal/hotline/field"
)

// SendInstantMsg handles transaction 108. Inputs: field 103 UserId
// (target), field 101 Data. Publishes InstantMsg; the hub delivers only to
// the target session. No reply.
func SendInstantMsg(hctx *Context, fields []field.Field) (*Reply, error) {
	target, _ := field.Find(fields, field.UserId)
	data, _ := field.Find(fields, field.Data)

	snap := hctx.Session.Snapshot()
	hctx.Registry.Publish(hctx.Ctx, broadcast.InstantMsg(snap.UserID, snap.Nickname, target.Uint16(), data.String()))

	return NoReply, nil
}
