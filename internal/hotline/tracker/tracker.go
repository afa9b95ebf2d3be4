// Package tracker implements optional, fire-and-forget UDP registration
// with a Hotline tracker: a periodic datagram announcing this server's
// listening port, live user count, and description. Registration is
// disabled whenever no tracker address is configured.
package tracker

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/rhxd/rhxd/internal/logger"
)

// magic identifies a TrackerRegistration datagram to the tracker daemon.
const magic uint16 = 0x0001

// Config is the subset of tracker configuration the Registrar needs.
type Config struct {
	Address     string
	Interval    time.Duration
	Name        string
	Description string
	ListenPort  int
}

// UserCounter reports the number of currently connected sessions, so each
// registration datagram carries a live count.
type UserCounter interface {
	Count() int
}

// Registrar periodically sends a registration datagram to a configured
// tracker address until stopped. A Registrar with no configured address
// is inert: Run returns immediately.
type Registrar struct {
	cfg     Config
	users   UserCounter
	passID  uint32
	conn    net.Conn
}

// NewRegistrar builds a Registrar. users supplies the live connection
// count included in each datagram.
func NewRegistrar(cfg Config, users UserCounter) *Registrar {
	return &Registrar{
		cfg:    cfg,
		users:  users,
		passID: rand.Uint32(),
	}
}

// Run sends one registration datagram immediately, then again every
// Interval, until ctx is cancelled. It returns nil if no tracker address
// is configured.
func (r *Registrar) Run(ctx context.Context) error {
	if r.cfg.Address == "" {
		return nil
	}

	conn, err := net.Dial("udp", r.cfg.Address)
	if err != nil {
		return fmt.Errorf("tracker: dial %s: %w", r.cfg.Address, err)
	}
	defer conn.Close()
	r.conn = conn

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	r.register(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.register(ctx)
		}
	}
}

func (r *Registrar) register(ctx context.Context) {
	datagram := r.encode()
	if _, err := r.conn.Write(datagram); err != nil {
		logger.WarnCtx(ctx, "tracker: registration send failed", "addr", r.cfg.Address, "error", err)
		return
	}
	logger.DebugCtx(ctx, "tracker: registration sent", "addr", r.cfg.Address, "users", r.users.Count())
}

// encode builds the TrackerRegistration datagram: magic, listening port,
// live user count, pass id, then the name and description as
// length-prefixed strings.
func (r *Registrar) encode() []byte {
	name := []byte(r.cfg.Name)
	desc := []byte(r.cfg.Description)

	buf := make([]byte, 12+1+len(name)+1+len(desc))
	binary.BigEndian.PutUint16(buf[0:2], magic)
	binary.BigEndian.PutUint16(buf[2:4], uint16(r.cfg.ListenPort))
	binary.BigEndian.PutUint32(buf[4:8], uint32(r.users.Count()))
	binary.BigEndian.PutUint32(buf[8:12], r.passID)

	off := 12
	buf[off] = byte(len(name))
	off++
	copy(buf[off:], name)
	off += len(name)

	buf[off] = byte(len(desc))
	off++
	copy(buf[off:], desc)

	return buf
}
