package logger

import (
	"log/slog"
)

// Standard field keys for structured logging, used consistently across the
// session task, handlers, and broadcast hub so log lines are aggregatable.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// Connection & session
	KeyConnectionID = "conn_id"   // internal connection id (xid), not wire-visible
	KeyClientIP     = "client_ip" // client remote address (host:port)
	KeyUserID       = "user_id"   // wire-visible 16-bit Hotline user id
	KeyNickname     = "nickname"  // client-supplied nickname
	KeyLogin        = "login"     // account login name
	KeyState        = "state"     // session state machine state

	// Transactions
	KeyKind      = "kind"       // transaction kind (numeric)
	KeyKindName  = "kind_name"  // transaction kind, human-readable
	KeyRequestID = "request_id" // transaction id from the wire header
	KeyIsReply   = "is_reply"   // whether the frame is a reply

	// Errors
	KeyError     = "error"      // error message
	KeyErrorCode = "error_code" // wire error_code

	// Broadcast
	KeyEventKind  = "event_kind"  // broadcast.Event kind
	KeyRecipients = "recipients"  // number of sessions an event was fanned out to
	KeyDropped    = "dropped"     // number of sessions an event was dropped for

	// Operation metadata
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ConnID returns a slog.Attr for the internal connection id
func ConnID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// ClientIP returns a slog.Attr for the client remote address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// UserID returns a slog.Attr for the wire-visible user id
func UserID(id uint16) slog.Attr {
	return slog.Int(KeyUserID, int(id))
}

// Nickname returns a slog.Attr for a client nickname
func Nickname(name string) slog.Attr {
	return slog.String(KeyNickname, name)
}

// Login returns a slog.Attr for an account login name
func Login(login string) slog.Attr {
	return slog.String(KeyLogin, login)
}

// State returns a slog.Attr for the session state machine state
func State(state string) slog.Attr {
	return slog.String(KeyState, state)
}

// Kind returns a slog.Attr for a transaction kind
func Kind(kind uint16) slog.Attr {
	return slog.Int(KeyKind, int(kind))
}

// KindName returns a slog.Attr for a transaction kind's human-readable name
func KindName(name string) slog.Attr {
	return slog.String(KeyKindName, name)
}

// RequestID returns a slog.Attr for a transaction id
func RequestID(id uint32) slog.Attr {
	return slog.Any(KeyRequestID, id)
}

// IsReply returns a slog.Attr for the reply flag
func IsReply(isReply bool) slog.Attr {
	return slog.Bool(KeyIsReply, isReply)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric wire error code
func ErrorCode(code uint32) slog.Attr {
	return slog.Any(KeyErrorCode, code)
}

// EventKind returns a slog.Attr for a broadcast event kind
func EventKind(kind string) slog.Attr {
	return slog.String(KeyEventKind, kind)
}

// Recipients returns a slog.Attr for the number of sessions reached
func Recipients(n int) slog.Attr {
	return slog.Int(KeyRecipients, n)
}

// Dropped returns a slog.Attr for the number of sessions an event was dropped for
func Dropped(n int) slog.Attr {
	return slog.Int(KeyDropped, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
