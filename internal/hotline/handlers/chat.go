package handlers

import (
	"github.com/rhxd/rhxd/internal/hotline/broadcast"
	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/herr"
)

// SendChat handles transaction 105. Inputs: field 101 Data, optional field
// 109 ChatOptions (0 normal, 1 emote), optional field 114 ChatId (reserved;
// rejected). Publishes Chat, delivered to every session including the
// sender. No reply is sent.
func SendChat(hctx *Context, fields []field.Field) (*Reply, error) {
	if _, ok := field.Find(fields, field.ChatId); ok {
		return nil, herr.New(herr.UnknownError, "chat rooms (field 114 ChatId) are not implemented")
	}

	data, _ := field.Find(fields, field.Data)

	emote := false
	if opts, ok := field.Find(fields, field.ChatOptions); ok {
		emote = opts.Uint16() == 1
	}

	snap := hctx.Session.Snapshot()
	hctx.Registry.Publish(hctx.Ctx, broadcast.Chat(snap.UserID, snap.Nickname, data.String(), emote))

	return NoReply, nil
}
