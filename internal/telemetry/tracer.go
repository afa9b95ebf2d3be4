package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys attached to spans covering a connection's life and each
// transaction handled on it.
const (
	AttrClientAddr = "client.address"

	AttrConnID  = "hotline.conn_id"
	AttrUserID  = "hotline.user_id"
	AttrNick    = "hotline.nickname"
	AttrLogin   = "hotline.login"
	AttrState   = "hotline.state"

	AttrTxnKind    = "hotline.transaction.kind"
	AttrTxnID      = "hotline.transaction.id"
	AttrTxnIsReply = "hotline.transaction.is_reply"
	AttrErrorCode  = "hotline.error_code"

	AttrEventKind   = "hotline.event.kind"
	AttrRecipients  = "hotline.event.recipients"
	AttrDropped     = "hotline.event.dropped"
)

// Span names for the connection lifecycle and transaction dispatch.
const (
	SpanConnection  = "hotline.connection"
	SpanHandshake   = "hotline.handshake"
	SpanTransaction = "hotline.transaction"
	SpanBroadcast   = "hotline.broadcast"
)

// ClientAddr returns an attribute for the client's remote address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// ConnID returns an attribute for the internal connection id.
func ConnID(id string) attribute.KeyValue {
	return attribute.String(AttrConnID, id)
}

// UserID returns an attribute for the wire-visible user id.
func UserID(id uint16) attribute.KeyValue {
	return attribute.Int(AttrUserID, int(id))
}

// Nickname returns an attribute for the client's nickname.
func Nickname(name string) attribute.KeyValue {
	return attribute.String(AttrNick, name)
}

// Login returns an attribute for the account login name.
func Login(login string) attribute.KeyValue {
	return attribute.String(AttrLogin, login)
}

// State returns an attribute for the session state machine state.
func State(state string) attribute.KeyValue {
	return attribute.String(AttrState, state)
}

// TxnKind returns an attribute for a transaction's numeric kind.
func TxnKind(kind uint16) attribute.KeyValue {
	return attribute.Int(AttrTxnKind, int(kind))
}

// TxnID returns an attribute for a transaction's wire id.
func TxnID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrTxnID, int64(id))
}

// TxnIsReply returns an attribute for the reply flag.
func TxnIsReply(isReply bool) attribute.KeyValue {
	return attribute.Bool(AttrTxnIsReply, isReply)
}

// ErrorCode returns an attribute for a wire error code.
func ErrorCode(code uint32) attribute.KeyValue {
	return attribute.Int64(AttrErrorCode, int64(code))
}

// EventKind returns an attribute for a broadcast event kind.
func EventKind(kind string) attribute.KeyValue {
	return attribute.String(AttrEventKind, kind)
}

// Recipients returns an attribute for the number of sessions an event reached.
func Recipients(n int) attribute.KeyValue {
	return attribute.Int(AttrRecipients, n)
}

// Dropped returns an attribute for the number of sessions an event was dropped for.
func Dropped(n int) attribute.KeyValue {
	return attribute.Int(AttrDropped, n)
}

// StartConnectionSpan starts the root span covering one accepted connection.
func StartConnectionSpan(ctx context.Context, connID, remoteAddr string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanConnection, trace.WithAttributes(
		ConnID(connID),
		ClientAddr(remoteAddr),
	))
}

// StartTransactionSpan starts a span for dispatching a single transaction.
func StartTransactionSpan(ctx context.Context, kind uint16, txnID uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		TxnKind(kind),
		TxnID(txnID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanTransaction, trace.WithAttributes(allAttrs...))
}

// StartBroadcastSpan starts a span for fanning an event out to the hub's sessions.
func StartBroadcastSpan(ctx context.Context, eventKind string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		EventKind(eventKind),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanBroadcast, trace.WithAttributes(allAttrs...))
}
