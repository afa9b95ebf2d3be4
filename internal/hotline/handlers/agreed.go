package handlers

import (
	"github.com/rhxd/rhxd/internal/hotline/broadcast"
	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/herr"
	"github.com/rhxd/rhxd/internal/hotline/session"
)

const maxNicknameBytes = 31

// Agreed handles transaction 121. Inputs: field 102 UserName (<= 31
// bytes), field 104 IconId, field 113 Options. On success the session
// becomes Active, an empty reply is sent, and UserJoined is published.
func Agreed(hctx *Context, fields []field.Field) (*Reply, error) {
	nameField, _ := field.Find(fields, field.UserName)
	nickname := nameField.String()

	if nickname == "" {
		return nil, herr.InvalidParameter("nickname must not be empty")
	}
	if len(nameField.Bytes) > maxNicknameBytes {
		return nil, herr.InvalidParameter("nickname exceeds 31 bytes")
	}

	var iconID int16
	if f, ok := field.Find(fields, field.UserIconId); ok {
		iconID = int16(f.Uint16())
	}

	// Options carries client-side status bits (e.g. refuse-chat/away) that
	// the roster reports back verbatim as UserFlags.
	var flags uint16
	if f, ok := field.Find(fields, field.Options); ok {
		flags = f.Uint16()
	}

	hctx.Session.SetIdentity(nickname, iconID, flags)
	hctx.Session.Advance(session.StateActive)

	snap := hctx.Session.Snapshot()
	hctx.Registry.Publish(hctx.Ctx, broadcast.UserJoined(snap.UserID, snap.Nickname, snap.IconID, snap.Flags, snap.Access))

	return reply(), nil
}
