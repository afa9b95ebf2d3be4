// Package session implements the per-connection Session record, the
// process-wide Manager registry, and the connection state machine.
package session

import (
	"sync"
	"time"

	"github.com/rhxd/rhxd/internal/hotline/broadcast"
	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rs/xid"
)

// mailboxCapacity bounds a session's outbound event queue. A recipient that
// cannot keep up with this many pending events is considered stuck.
const mailboxCapacity = 64

// Session is the per-connection record held by the server for one client.
// Identity fields set at connect/login time are read-only after that point;
// nickname/icon/flags/access/state mutate under mu.
type Session struct {
	// ConnID is an internal, protocol-invisible connection identifier used
	// only in logs and trace spans. It is distinct from UserID, the
	// wire-visible 16-bit id the registry allocates.
	ConnID     string
	RemoteAddr string
	ConnectedAt time.Time

	mu            sync.Mutex
	userID        uint16
	accountID     *uint32
	nickname      string
	iconID        int16
	flags         uint16
	access        wire.AccessPrivileges
	clientVersion uint16
	state         State
	lastActivity  time.Time

	outbound chan broadcast.Event
	closeOnce sync.Once
}

// New creates a Session in StateHandshaking for a freshly accepted
// connection. userID is allocated by the Manager before construction and
// is fixed for the session's lifetime.
func New(userID uint16, remoteAddr string) *Session {
	now := time.Now()
	return &Session{
		ConnID:       xid.New().String(),
		RemoteAddr:   remoteAddr,
		ConnectedAt:  now,
		userID:       userID,
		state:        StateHandshaking,
		lastActivity: now,
		outbound:     make(chan broadcast.Event, mailboxCapacity),
	}
}

// UserID returns the session's wire-visible user id. Implements
// broadcast.Recipient.
func (s *Session) UserID() uint16 {
	return s.userID
}

// Outbound returns the channel the session's writer loop reads events from.
func (s *Session) Outbound() <-chan broadcast.Event {
	return s.outbound
}

// TrySend attempts a non-blocking enqueue of ev onto the session's mailbox.
// Implements broadcast.Recipient.
func (s *Session) TrySend(ev broadcast.Event) bool {
	select {
	case s.outbound <- ev:
		return true
	default:
		return false
	}
}

// Close transitions the session to StateClosing and closes its mailbox,
// unblocking the writer loop. Implements broadcast.Recipient. Safe to call
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosing
		s.mu.Unlock()
		close(s.outbound)
	})
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Advance unconditionally moves the session to the given state. Used by the
// server task after a successful state-gated transaction; it does not
// itself validate the transition.
func (s *Session) Advance(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// CheckInboundKind validates kind against the session's current state
// without mutating it.
func (s *Session) CheckInboundKind(kind uint16) error {
	return s.State().CheckInboundKind(kind)
}

// Touch records activity, advancing LastActivity. LastActivity never moves
// backward.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// IdleSince reports how long it has been since the session's last recorded
// activity.
func (s *Session) IdleSince() time.Duration {
	s.mu.Lock()
	last := s.lastActivity
	s.mu.Unlock()
	return time.Since(last)
}

// SetAccount records a successful authenticated login.
func (s *Session) SetAccount(accountID *uint32, access wire.AccessPrivileges) {
	s.mu.Lock()
	s.accountID = accountID
	s.access = access
	s.mu.Unlock()
}

// SetClientVersion records the Version field (160) reported at Login.
func (s *Session) SetClientVersion(v uint16) {
	s.mu.Lock()
	s.clientVersion = v
	s.mu.Unlock()
}

// SetIdentity records the nickname/icon/flags reported at Agreed.
func (s *Session) SetIdentity(nickname string, iconID int16, flags uint16) {
	s.mu.Lock()
	s.nickname = nickname
	s.iconID = iconID
	s.flags = flags
	s.mu.Unlock()
}

// Access returns the session's current access privileges.
func (s *Session) Access() wire.AccessPrivileges {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// Nickname returns the session's current display name.
func (s *Session) Nickname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname
}

// Summary is a point-in-time, lock-free copy of a session's roster-visible
// fields, safe to hold across a suspension point.
type Summary struct {
	UserID   uint16
	Nickname string
	IconID   int16
	Flags    uint16
	Access   wire.AccessPrivileges
	Idle     time.Duration
}

// Snapshot copies out the session's current roster-visible fields.
func (s *Session) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		UserID:   s.userID,
		Nickname: s.nickname,
		IconID:   s.iconID,
		Flags:    s.flags,
		Access:   s.access,
		Idle:     time.Since(s.lastActivity),
	}
}
