package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rhxd/rhxd/internal/hotline/broadcast"
	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/handlers"
	"github.com/rhxd/rhxd/internal/hotline/handshake"
	"github.com/rhxd/rhxd/internal/hotline/herr"
	"github.com/rhxd/rhxd/internal/hotline/session"
	"github.com/rhxd/rhxd/internal/hotline/transaction"
	"github.com/rhxd/rhxd/internal/hotline/wire"
	"github.com/rhxd/rhxd/internal/logger"
	"github.com/rhxd/rhxd/internal/telemetry"
)

// connection owns one accepted TCP socket: a reader goroutine that
// decodes and dispatches inbound transactions against the session state
// machine, and a writer goroutine that drains the session's outbound
// mailbox and encodes it back onto the wire. Replies are written from the
// reader goroutine and pushed events from the writer goroutine; each
// transaction goes out in a single Write call.
type connection struct {
	adapter *Adapter
	conn    net.Conn
	sess    *session.Session

	pushID atomic.Uint32
}

func newConnection(a *Adapter, conn net.Conn) *connection {
	return &connection{adapter: a, conn: conn}
}

// serve runs the handshake, then the reader loop, until the connection
// closes for any reason. It always unregisters the session and publishes
// UserLeft if the session had reached Active, per the transport-EOF rule.
func (c *connection) serve(ctx context.Context) {
	remoteAddr := c.conn.RemoteAddr().String()
	defer c.closeConn()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("hotline: panic in connection handler",
				"addr", remoteAddr, "error", r, "stack", string(debug.Stack()))
		}
	}()

	ctx, connSpan := telemetry.StartConnectionSpan(ctx, "", remoteAddr)
	defer connSpan.End()

	if err := c.handshake(); err != nil {
		if c.adapter.metrics != nil {
			c.adapter.metrics.RecordHandshakeFailure()
		}
		if !errors.Is(err, io.EOF) {
			logger.WarnCtx(ctx, "hotline: handshake failed", "addr", remoteAddr, "error", err)
		}
		return
	}

	userID, err := c.adapter.registry.Allocate()
	if err != nil {
		logger.WarnCtx(ctx, "hotline: connection rejected, at capacity", "addr", remoteAddr)
		return
	}

	c.sess = session.New(userID, remoteAddr)
	c.sess.Advance(session.StateLoggedIn)
	c.adapter.registry.Insert(c.sess)

	telemetry.SetAttributes(ctx, telemetry.ConnID(c.sess.ConnID), telemetry.UserID(userID))

	lc := logger.NewLogContext(c.sess.ConnID, remoteAddr).WithUserID(userID)
	ctx = logger.WithContext(ctx, lc)

	logger.InfoCtx(ctx, "hotline: session established", "user_id", userID)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx)
	}()

	c.readLoop(ctx)

	// A session the hub closed as a laggard is already Closing; the hub only
	// closes Active recipients, so it had reached Active too.
	st := c.sess.State()
	wasActive := st == session.StateActive || st == session.StateClosing
	c.sess.Close()
	<-writerDone

	c.adapter.registry.Remove(userID)
	if wasActive {
		c.adapter.registry.Publish(ctx, broadcast.UserLeft(userID))
	}

	logger.InfoCtx(ctx, "hotline: session closed", "user_id", userID)
}

func (c *connection) handshake() error {
	if _, err := handshake.Read(c.conn, c.conn); err != nil {
		return err
	}
	return handshake.WriteReply(c.conn)
}

// readLoop decodes transactions until the connection errors, the idle
// timeout elapses, or the session is closed from elsewhere (an
// administrative Disconnect drains through the writer loop instead, which
// closes the socket once it has flushed).
func (c *connection) readLoop(ctx context.Context) {
	for {
		if c.adapter.config.IdleTimeout > 0 {
			deadline := time.Now().Add(c.adapter.config.IdleTimeout)
			if err := c.conn.SetReadDeadline(deadline); err != nil {
				logger.WarnCtx(ctx, "hotline: set read deadline failed", "error", err)
			}
		}

		txn, err := transaction.Decode(c.conn)
		if err != nil {
			c.logReadError(ctx, err)
			return
		}

		c.sess.Touch()
		c.handleTransaction(ctx, txn)
	}
}

func (c *connection) logReadError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, io.EOF):
		logger.DebugCtx(ctx, "hotline: connection closed by client")
	case isTimeout(err):
		logger.DebugCtx(ctx, "hotline: connection idle timeout")
	default:
		logger.DebugCtx(ctx, "hotline: framing error, closing connection", "error", err)
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// handleTransaction gates the inbound kind against the session state
// machine, dispatches to the handler table, and writes the reply (or the
// translated herr.Error) back to the client.
func (c *connection) handleTransaction(ctx context.Context, txn transaction.Transaction) {
	kind := txn.Header.Kind

	ctx, span := telemetry.StartTransactionSpan(ctx, kind, txn.Header.ID)
	defer span.End()
	ctx = logger.WithContext(ctx, logger.FromContext(ctx).WithKind(kind))

	if err := c.sess.CheckInboundKind(kind); err != nil {
		c.writeError(ctx, kind, txn.Header.ID, err)
		return
	}

	hctx := &handlers.Context{
		Ctx:       ctx,
		Session:   c.sess,
		Registry:  c.adapter.registry,
		Accounts:  c.adapter.accounts,
		Config:    c.adapter.config.Handlers,
		RequestID: txn.Header.ID,
	}

	reply, name, err := handlers.Dispatch(kind, hctx, txn.Fields)
	if err != nil {
		c.writeError(ctx, kind, txn.Header.ID, err)
		return
	}

	logger.DebugCtx(ctx, "hotline: transaction handled", "kind", kind, "handler", name)

	if reply == handlers.NoReply {
		c.recordTransaction(kind, herr.Ok)
		return
	}

	out := transaction.NewReply(kind, txn.Header.ID, herr.Ok, reply.Fields)
	c.writeTransaction(ctx, out)
	c.recordTransaction(kind, herr.Ok)
}

func (c *connection) writeError(ctx context.Context, kind uint16, id uint32, err error) {
	herrErr, ok := err.(*herr.Error)
	if !ok {
		herrErr = herr.New(herr.UnknownError, "internal error")
		logger.ErrorCtx(ctx, "hotline: non-herr error from handler", "kind", kind, "error", err)
	}

	telemetry.SetAttributes(ctx, telemetry.ErrorCode(herrErr.Code))

	var fields []field.Field
	if herrErr.Message != "" {
		fields = []field.Field{field.New(field.ErrorString, []byte(herrErr.Message))}
	}

	out := transaction.NewReply(kind, id, herrErr.Code, fields)
	c.writeTransaction(ctx, out)
	c.recordTransaction(kind, herrErr.Code)
}

func (c *connection) recordTransaction(kind uint16, errorCode uint32) {
	if c.adapter.metrics != nil {
		c.adapter.metrics.RecordTransaction(kind, errorCode)
	}
}

// writeLoop drains the session's outbound mailbox, translating each
// broadcast.Event into its wire transaction per the delivery table, until
// the mailbox is closed by Session.Close or a Disconnect has been written.
// It closes the socket on exit, which also ends the reader loop.
func (c *connection) writeLoop(ctx context.Context) {
	defer c.closeConn()
	for ev := range c.sess.Outbound() {
		txn, ok := c.translateEvent(ev)
		if !ok {
			continue
		}
		c.writeTransaction(ctx, txn)

		if ev.Kind == broadcast.KindDisconnect {
			return
		}
	}
}

func (c *connection) translateEvent(ev broadcast.Event) (transaction.Transaction, bool) {
	id := c.nextPushID()

	switch ev.Kind {
	case broadcast.KindUserJoined, broadcast.KindUserChanged:
		fields := []field.Field{field.New(field.UserNameWithInfo, encodeRosterEntry(ev.UserID, ev.Nickname, ev.IconID, ev.Flags))}
		return transaction.NewRequest(transaction.KindNotifyChangeUser, id, fields), true

	case broadcast.KindUserLeft:
		fields := []field.Field{field.New(field.UserId, uint16Field(ev.UserID))}
		return transaction.NewRequest(transaction.KindNotifyDeleteUser, id, fields), true

	case broadcast.KindChat:
		text := ev.Text
		if ev.Emote {
			text = fmt.Sprintf("*** %s %s", ev.FromNickname, text)
		}
		fields := []field.Field{
			field.New(field.Data, []byte(text)),
			field.New(field.UserName, []byte(ev.FromNickname)),
			field.New(field.UserId, uint16Field(ev.FromUserID)),
		}
		return transaction.NewRequest(transaction.KindChatMessage, id, fields), true

	case broadcast.KindInstantMsg:
		fields := []field.Field{
			field.New(field.Data, []byte(ev.Text)),
			field.New(field.UserName, []byte(ev.FromNickname)),
			field.New(field.UserId, uint16Field(ev.FromUserID)),
		}
		return transaction.NewRequest(transaction.KindServerMessage, id, fields), true

	case broadcast.KindDisconnect:
		fields := []field.Field{field.New(field.Data, []byte(ev.Reason))}
		return transaction.NewRequest(transaction.KindDisconnectMsg, id, fields), true

	default:
		return transaction.Transaction{}, false
	}
}

func (c *connection) nextPushID() uint32 {
	return c.pushID.Add(1)
}

func (c *connection) writeTransaction(ctx context.Context, txn transaction.Transaction) {
	if c.adapter.config.IdleTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.adapter.config.IdleTimeout))
	}
	if _, err := c.conn.Write(txn.Encode()); err != nil {
		logger.DebugCtx(ctx, "hotline: write error", "error", err)
	}
}

func (c *connection) closeConn() {
	_ = c.conn.Close()
}

func encodeRosterEntry(userID uint16, nickname string, iconID int16, flags uint16) []byte {
	name := []byte(nickname)
	buf := make([]byte, 8+len(name))
	wire.PutUint16(buf[0:2], userID)
	wire.PutUint16(buf[2:4], uint16(iconID))
	wire.PutUint16(buf[4:6], flags)
	wire.PutUint16(buf[6:8], uint16(len(name)))
	copy(buf[8:], name)
	return buf
}

func uint16Field(v uint16) []byte {
	b := make([]byte, 2)
	wire.PutUint16(b, v)
	return b
}
