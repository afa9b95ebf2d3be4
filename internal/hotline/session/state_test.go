package session

import "testing"

func TestStateMachineGating(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		kind    uint16
		wantErr bool
	}{
		{"HandshakingRejectsEverything", StateHandshaking, loginKind, true},
		{"LoggedInAcceptsLogin", StateLoggedIn, loginKind, false},
		{"LoggedInRejectsOther", StateLoggedIn, agreedKind, true},
		{"AgreeingAcceptsAgreed", StateAgreeing, agreedKind, false},
		{"AgreeingRejectsOther", StateAgreeing, loginKind, true},
		{"ActiveAcceptsAnything", StateActive, 105, false},
		{"ClosingRejectsEverything", StateClosing, 105, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.CheckInboundKind(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckInboundKind(%d) in state %s: err = %v, wantErr %v", tt.kind, tt.state, err, tt.wantErr)
			}
		})
	}
}

func TestSessionAdvanceAndClose(t *testing.T) {
	s := New(1, "127.0.0.1:1234")

	if s.State() != StateHandshaking {
		t.Fatalf("initial state = %s, want Handshaking", s.State())
	}

	s.Advance(StateLoggedIn)
	if s.State() != StateLoggedIn {
		t.Fatalf("state after Advance = %s, want LoggedIn", s.State())
	}

	s.Close()
	if s.State() != StateClosing {
		t.Fatalf("state after Close = %s, want Closing", s.State())
	}

	// Close must be idempotent.
	s.Close()
}
