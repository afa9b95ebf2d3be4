package handlers

import (
	"fmt"
	"strconv"

	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/herr"
	"github.com/rhxd/rhxd/internal/hotline/session"
	"github.com/rhxd/rhxd/internal/hotline/wire"
)

// GetClientInfoText handles transaction 303. Requires AccessGetClientInfo.
// Input: field 103 UserId (target). Replies with field 101 (a fixed-layout
// multi-line info block), field 102 (target nickname), and field 104
// (target icon id, rendered as ASCII digits rather than the usual u16).
func GetClientInfoText(hctx *Context, fields []field.Field) (*Reply, error) {
	if !hctx.Session.Access().Has(wire.AccessGetClientInfo) {
		return nil, herr.New(herr.PermissionDenied, "GET_USER_INFO privilege required")
	}

	targetField, ok := field.Find(fields, field.UserId)
	if !ok {
		return nil, herr.New(herr.NotFound, "no target user id given")
	}

	target, found := hctx.Registry.Get(targetField.Uint16())
	if !found {
		return nil, herr.New(herr.NotFound, "target user not connected")
	}

	info := formatClientInfo(target)

	return reply(
		field.New(field.Data, []byte(info)),
		field.New(field.UserName, []byte(target.Nickname)),
		field.New(field.UserIconId, []byte(strconv.Itoa(int(target.IconID)))),
	), nil
}

// formatClientInfo renders the fixed, line-oriented info block clients parse
// on display:
//
//	Nickname: <name>
//	UserId:   <id>
//	Icon:     <icon>
//	Away:     <min> min <sec> sec
func formatClientInfo(s session.Summary) string {
	idle := s.Idle
	mins := int(idle.Minutes())
	secs := int(idle.Seconds()) - mins*60

	return fmt.Sprintf(
		"Nickname: %s\nUserId:   %d\nIcon:     %d\nAway:     %d min %d sec\n",
		s.Nickname, s.UserID, s.IconID, mins, secs,
	)
}
