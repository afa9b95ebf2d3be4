package broadcast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecipient struct {
	userID uint16
	mbox   chan Event
	closed bool
}

func newFakeRecipient(userID uint16, capacity int) *fakeRecipient {
	return &fakeRecipient{userID: userID, mbox: make(chan Event, capacity)}
}

func (f *fakeRecipient) UserID() uint16 { return f.userID }

func (f *fakeRecipient) TrySend(ev Event) bool {
	select {
	case f.mbox <- ev:
		return true
	default:
		return false
	}
}

func (f *fakeRecipient) Close() { f.closed = true }

type fakeRegistry struct {
	recipients []Recipient
}

func (r *fakeRegistry) SnapshotRecipients() []Recipient {
	return r.recipients
}

type fakeMetrics struct {
	published map[string]int
	dropped   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{published: make(map[string]int), dropped: make(map[string]int)}
}

func (m *fakeMetrics) EventPublished(kind string) { m.published[kind]++ }
func (m *fakeMetrics) EventDropped(kind string)    { m.dropped[kind]++ }

func TestHubSelfExclusionOnJoinAndLeave(t *testing.T) {
	a := newFakeRecipient(1, 4)
	b := newFakeRecipient(2, 4)
	c := newFakeRecipient(3, 4)
	reg := &fakeRegistry{recipients: []Recipient{a, b, c}}

	hub := NewHub(reg, nil)
	hub.Publish(context.Background(), UserJoined(1, "A", 0, 0, 0))

	assert.Len(t, a.mbox, 0, "joining user must not receive its own join")
	assert.Len(t, b.mbox, 1)
	assert.Len(t, c.mbox, 1)

	hub.Publish(context.Background(), UserLeft(1))
	assert.Len(t, a.mbox, 0, "leaving user must not receive its own leave")
	assert.Len(t, b.mbox, 2)
	assert.Len(t, c.mbox, 2)
}

func TestHubChatDeliversToSender(t *testing.T) {
	a := newFakeRecipient(1, 4)
	b := newFakeRecipient(2, 4)
	reg := &fakeRegistry{recipients: []Recipient{a, b}}

	hub := NewHub(reg, nil)
	hub.Publish(context.Background(), Chat(1, "A", "hi", false))

	assert.Len(t, a.mbox, 1, "chat must echo to the sender")
	assert.Len(t, b.mbox, 1)
}

func TestHubInstantMsgTargetOnly(t *testing.T) {
	a := newFakeRecipient(1, 4)
	b := newFakeRecipient(2, 4)
	c := newFakeRecipient(3, 4)
	reg := &fakeRegistry{recipients: []Recipient{a, b, c}}

	hub := NewHub(reg, nil)
	hub.Publish(context.Background(), InstantMsg(1, "A", 2, "psst"))

	assert.Len(t, a.mbox, 0)
	assert.Len(t, b.mbox, 1)
	assert.Len(t, c.mbox, 0)
}

func TestHubDropsChatForStuckRecipientAndCounts(t *testing.T) {
	stuck := newFakeRecipient(2, 1)
	stuck.mbox <- Chat(0, "filler", "x", false) // fill the mailbox

	reg := &fakeRegistry{recipients: []Recipient{stuck}}
	metrics := newFakeMetrics()
	hub := NewHub(reg, metrics)

	hub.Publish(context.Background(), Chat(1, "A", "hi", false))

	assert.False(t, stuck.closed, "a stuck recipient must not be closed for a dropped Chat")
	assert.Equal(t, 1, metrics.dropped["chat"])
}

func TestHubClosesStuckRecipientForRosterEvent(t *testing.T) {
	stuck := newFakeRecipient(2, 1)
	stuck.mbox <- UserChanged(9, "filler", 0, 0) // fill the mailbox

	reg := &fakeRegistry{recipients: []Recipient{stuck}}
	hub := NewHub(reg, nil)

	hub.Publish(context.Background(), UserJoined(3, "C", 0, 0, 0))

	require.True(t, stuck.closed, "a recipient that cannot accept a roster event must be closed")
}
