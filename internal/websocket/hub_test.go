package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestClient(hub *Hub, roomID uuid.UUID, buffer int) *Client {
	return &Client{
		Hub:    hub,
		RoomID: roomID,
		UserID: uuid.New(),
		Send:   make(chan []byte, buffer),
	}
}

func register(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	select {
	case hub.register <- c:
	case <-time.After(time.Second):
		t.Fatal("register timed out")
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.Send:
		return data
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
		return nil
	}
}

func TestBroadcastToRoom_ReachesEveryMemberOnce(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	roomID := uuid.New()
	a := newTestClient(hub, roomID, 4)
	b := newTestClient(hub, roomID, 4)
	register(t, hub, a)
	register(t, hub, b)

	hub.BroadcastToRoom(roomID, []byte("reply"))

	assert.Equal(t, []byte("reply"), receive(t, a))
	assert.Equal(t, []byte("reply"), receive(t, b))

	// Exactly once each.
	assert.Empty(t, a.Send)
	assert.Empty(t, b.Send)
}

func TestBroadcastToRoom_ScopedToRoom(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	roomA := uuid.New()
	roomB := uuid.New()
	inA := newTestClient(hub, roomA, 4)
	inB := newTestClient(hub, roomB, 4)
	register(t, hub, inA)
	register(t, hub, inB)

	hub.BroadcastToRoom(roomA, []byte("for room A"))

	assert.Equal(t, []byte("for room A"), receive(t, inA))
	assert.Empty(t, inB.Send)
}

func TestBroadcastToRoom_NoMembersIsANoOp(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	hub.BroadcastToRoom(uuid.New(), []byte("into the void"))
}

func TestUnregister_RemovesClientAndClosesSend(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	roomID := uuid.New()
	c := newTestClient(hub, roomID, 4)
	register(t, hub, c)

	select {
	case hub.unregister <- c:
	case <-time.After(time.Second):
		t.Fatal("unregister timed out")
	}

	// Send is closed once the hub processes the unregister.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-c.Send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	// Broadcasting afterwards must not panic on the closed channel.
	hub.BroadcastToRoom(roomID, []byte("late"))
}

func TestBroadcastToRoom_SlowClientIsDropped(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	roomID := uuid.New()
	slow := newTestClient(hub, roomID, 1)
	healthy := newTestClient(hub, roomID, 4)
	register(t, hub, slow)
	register(t, hub, healthy)

	// Fill the slow client's buffer, then broadcast again.
	hub.BroadcastToRoom(roomID, []byte("first"))
	hub.BroadcastToRoom(roomID, []byte("second"))

	// The healthy client got both.
	assert.Equal(t, []byte("first"), receive(t, healthy))
	assert.Equal(t, []byte("second"), receive(t, healthy))

	// The slow client is eventually unregistered and its channel closed.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, joined := hub.rooms[roomID][slow]
		return !joined
	}, time.Second, 10*time.Millisecond)
}

func TestTrySend_AfterDropIsRejectedWithoutPanic(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	roomID := uuid.New()
	slow := newTestClient(hub, roomID, 1)
	register(t, hub, slow)

	// Fill the buffer, then trigger the drop with a second broadcast.
	hub.BroadcastToRoom(roomID, []byte("first"))
	hub.BroadcastToRoom(roomID, []byte("second"))

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, joined := hub.rooms[roomID][slow]
		return !joined
	}, time.Second, 10*time.Millisecond)

	// A direct send after the drop, as the error path does, is refused
	// instead of writing to the closed channel.
	assert.False(t, slow.TrySend([]byte("error frame")))
}

func TestTrySend_BufferedClientAcceptsPayload(t *testing.T) {
	hub := NewHub(nil, nopLogger{})

	c := newTestClient(hub, uuid.New(), 1)
	assert.True(t, c.TrySend([]byte("one")))
	assert.False(t, c.TrySend([]byte("two")))
	assert.Equal(t, []byte("one"), receive(t, c))
}
