package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rhxd/rhxd/internal/hotline/broadcast"
)

// ErrAtCapacity is returned by Allocate when the configured connection
// limit, or the 16-bit user id space, is exhausted.
var ErrAtCapacity = errors.New("session: at capacity")

// Manager is the process-wide, concurrently accessed session registry
// (spec §4.5). It is the single authority on liveness: a session exists in
// the registry if and only if it is considered connected.
//
// Reads (Snapshot, Get, SnapshotRecipients) take a read lock and copy out;
// writes (Allocate, Insert, Remove) take a write lock. No handler is ever
// handed the map itself, so the lock is never held across a suspension
// point.
type Manager struct {
	mu             sync.RWMutex
	sessions       map[uint16]*Session
	free           []uint16
	nextID         uint32 // wider than uint16 so the "exhausted" check is exact
	maxConnections int    // 0 means unlimited

	hub *broadcast.Hub
}

// NewManager returns an empty registry. maxConnections of 0 means
// unlimited, bounded only by the 1..=65535 id space.
func NewManager(maxConnections int) *Manager {
	return &Manager{
		sessions:       make(map[uint16]*Session),
		nextID:         1,
		maxConnections: maxConnections,
	}
}

// AttachHub wires the registry to a Hub so Publish can delegate to it. Must
// be called once before the first Publish; the Hub itself is constructed
// with this Manager as its Registry.
func (m *Manager) AttachHub(hub *broadcast.Hub) {
	m.hub = hub
}

// Allocate reserves a fresh user id, or reports ErrAtCapacity if
// max_connections is exceeded or the id space is exhausted. The id is not
// visible to Snapshot/Get until Insert is called with a Session built from
// it.
func (m *Manager) Allocate() (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxConnections > 0 && len(m.sessions) >= m.maxConnections {
		return 0, ErrAtCapacity
	}

	if n := len(m.free); n > 0 {
		id := m.free[n-1]
		m.free = m.free[:n-1]
		return id, nil
	}

	if m.nextID > 0xFFFF {
		return 0, ErrAtCapacity
	}
	id := uint16(m.nextID)
	m.nextID++
	return id, nil
}

// Insert adds a fully constructed Session to the registry under its
// UserID.
func (m *Manager) Insert(s *Session) {
	m.mu.Lock()
	m.sessions[s.UserID()] = s
	m.mu.Unlock()
}

// Remove deletes userID from the registry and returns its id to the free
// pool for reuse. The protocol has no durable reference to past ids, so
// reuse is safe.
func (m *Manager) Remove(userID uint16) {
	m.mu.Lock()
	if _, ok := m.sessions[userID]; ok {
		delete(m.sessions, userID)
		m.free = append(m.free, userID)
	}
	m.mu.Unlock()
}

// Get returns a consistent snapshot of one session, if still registered.
func (m *Manager) Get(userID uint16) (Summary, bool) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return Summary{}, false
	}
	return s.Snapshot(), true
}

// Snapshot returns a consistent list of every Active session's
// roster-visible fields. Sessions still in LoggedIn/Agreeing are registered
// (so Remove/Count see them) but have not sent Agreed yet, so they have no
// nickname and no UserJoined has been published for them; they are excluded
// here for the same reason. Order is unspecified but stable within one call.
func (m *Manager) Snapshot() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.State() != StateActive {
			continue
		}
		out = append(out, s.Snapshot())
	}
	return out
}

// SnapshotRecipients implements broadcast.Registry: a copy of the current
// Active sessions as broadcast.Recipient, taken under a shared read lock and
// handed to the Hub, which never calls back into the registry while
// iterating it. Sessions that have not reached Active are excluded for the
// same reason Snapshot excludes them: they have no roster presence yet.
func (m *Manager) SnapshotRecipients() []broadcast.Recipient {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]broadcast.Recipient, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.State() != StateActive {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Count returns the number of currently registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Publish delegates event delivery to the attached Hub.
func (m *Manager) Publish(ctx context.Context, ev broadcast.Event) {
	if m.hub == nil {
		return
	}
	m.hub.Publish(ctx, ev)
}
