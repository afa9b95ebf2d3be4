package session

import "github.com/rhxd/rhxd/internal/hotline/herr"

// State is a position in the per-connection state machine: Handshaking →
// LoggedIn → Agreeing → Active → Closing.
type State int

const (
	// StateHandshaking holds from TCP accept until the handshake reply is
	// written. No transactions are read in this state.
	StateHandshaking State = iota
	// StateLoggedIn accepts exactly one inbound kind: Login (107).
	StateLoggedIn
	// StateAgreeing accepts exactly one inbound kind: Agreed (121).
	StateAgreeing
	// StateActive accepts any transaction kind.
	StateActive
	// StateClosing accepts nothing; the session is being torn down.
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "Handshaking"
	case StateLoggedIn:
		return "LoggedIn"
	case StateAgreeing:
		return "Agreeing"
	case StateActive:
		return "Active"
	case StateClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// loginKind and agreedKind mirror transaction.KindLogin/KindAgreed. Defined
// locally rather than imported to keep this package free of a dependency on
// the transaction codec; session only needs to know the two numeric kinds
// that gate its pre-Active states.
const (
	loginKind  uint16 = 107
	agreedKind uint16 = 121
)

// CheckInboundKind reports whether kind is a legal inbound transaction for
// the session's current state. It returns an *herr.Error describing the
// violation, or nil when the kind is accepted.
func (s State) CheckInboundKind(kind uint16) error {
	switch s {
	case StateHandshaking:
		return herr.InvalidState(kind, s.String())
	case StateLoggedIn:
		if kind != loginKind {
			return herr.InvalidState(kind, s.String())
		}
	case StateAgreeing:
		if kind != agreedKind {
			return herr.InvalidState(kind, s.String())
		}
	case StateActive:
		// all kinds accepted
	case StateClosing:
		return herr.InvalidState(kind, s.String())
	}
	return nil
}
