// Package broadcast implements the Hub that fans Events out to connected
// sessions: roster changes, chat, instant messages, and administrative
// disconnects.
package broadcast

import "github.com/rhxd/rhxd/internal/hotline/wire"

// Kind discriminates the payload carried by an Event.
type Kind int

const (
	KindUserJoined Kind = iota
	KindUserChanged
	KindUserLeft
	KindChat
	KindInstantMsg
	KindDisconnect
)

func (k Kind) String() string {
	switch k {
	case KindUserJoined:
		return "user_joined"
	case KindUserChanged:
		return "user_changed"
	case KindUserLeft:
		return "user_left"
	case KindChat:
		return "chat"
	case KindInstantMsg:
		return "instant_msg"
	case KindDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Event is a value published to the Hub. Only the fields relevant to Kind
// are populated; the rest are zero.
type Event struct {
	Kind Kind

	// UserJoined / UserChanged / UserLeft
	UserID   uint16
	Nickname string
	IconID   int16
	Flags    uint16
	Access   wire.AccessPrivileges

	// Chat
	FromUserID   uint16
	FromNickname string
	Text         string
	Emote        bool

	// InstantMsg / Disconnect
	ToUserID uint16
	Reason   string
}

// UserJoined builds a roster-join event.
func UserJoined(userID uint16, nickname string, iconID int16, flags uint16, access wire.AccessPrivileges) Event {
	return Event{Kind: KindUserJoined, UserID: userID, Nickname: nickname, IconID: iconID, Flags: flags, Access: access}
}

// UserChanged builds a roster-update event.
func UserChanged(userID uint16, nickname string, iconID int16, flags uint16) Event {
	return Event{Kind: KindUserChanged, UserID: userID, Nickname: nickname, IconID: iconID, Flags: flags}
}

// UserLeft builds a roster-leave event.
func UserLeft(userID uint16) Event {
	return Event{Kind: KindUserLeft, UserID: userID}
}

// Chat builds a chat broadcast, delivered to every session including the
// sender.
func Chat(fromUserID uint16, fromNickname, text string, emote bool) Event {
	return Event{Kind: KindChat, FromUserID: fromUserID, FromNickname: fromNickname, Text: text, Emote: emote}
}

// InstantMsg builds a private message, delivered only to ToUserID.
func InstantMsg(fromUserID uint16, fromNickname string, toUserID uint16, text string) Event {
	return Event{Kind: KindInstantMsg, FromUserID: fromUserID, FromNickname: fromNickname, ToUserID: toUserID, Text: text}
}

// Disconnect builds an administrative disconnect, delivered only to
// ToUserID.
func Disconnect(toUserID uint16, reason string) Event {
	return Event{Kind: KindDisconnect, ToUserID: toUserID, Reason: reason}
}

// targetUserID returns the user id an InstantMsg or Disconnect event is
// addressed to, and whether ev is in fact addressed to a single recipient.
func (ev Event) targetUserID() (uint16, bool) {
	switch ev.Kind {
	case KindInstantMsg, KindDisconnect:
		return ev.ToUserID, true
	default:
		return 0, false
	}
}

// selfUserID returns the user id an event names, for the self-exclusion
// rule on UserJoined/UserLeft.
func (ev Event) selfUserID() (uint16, bool) {
	switch ev.Kind {
	case KindUserJoined, KindUserLeft:
		return ev.UserID, true
	default:
		return 0, false
	}
}

// roster reports whether ev is a roster-affecting event, which the hub
// never silently drops for backpressure.
func (ev Event) roster() bool {
	switch ev.Kind {
	case KindUserJoined, KindUserChanged, KindUserLeft:
		return true
	default:
		return false
	}
}
