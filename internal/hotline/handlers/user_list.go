package handlers

import (
	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/session"
	"github.com/rhxd/rhxd/internal/hotline/wire"
)

// GetUserNameList handles transaction 300. No inputs. The reply carries one
// UserNameWithInfo (field 300) entry per active session, encoded as
// user_id(u16 BE) | icon_id(i16 BE) | flags(u16 BE) | name_len(u16 BE) |
// name_bytes. Order is unspecified but stable within one reply.
func GetUserNameList(hctx *Context, _ []field.Field) (*Reply, error) {
	entries := hctx.Registry.Snapshot()

	fields := make([]field.Field, 0, len(entries))
	for _, s := range entries {
		fields = append(fields, field.New(field.UserNameWithInfo, encodeUserNameWithInfo(s)))
	}

	return reply(fields...), nil
}

func encodeUserNameWithInfo(s session.Summary) []byte {
	name := []byte(s.Nickname)
	buf := make([]byte, 8+len(name))

	wire.PutUint16(buf[0:2], s.UserID)
	wire.PutUint16(buf[2:4], uint16(s.IconID))
	wire.PutUint16(buf[4:6], s.Flags)
	wire.PutUint16(buf[6:8], uint16(len(name)))
	copy(buf[8:], name)

	return buf
}
