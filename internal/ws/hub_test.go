package ws

import (
	"testing"
	"time"

	"github.com/pliu/chatty-social/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg := <-c.send:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSendToOfflineUserIsDropped(t *testing.T) {
	hub := NewHub(nil, config.Default())

	assert.NotPanics(t, func() {
		hub.SendTo("nobody", []byte("hello"))
		hub.Notify("nobody", "Friend request from a")
	})
}

func TestSendToDeliversToRegisteredClient(t *testing.T) {
	hub := NewHub(nil, config.Default())
	a := newTestClient(hub, "a")
	hub.Presence().Register("a", a)

	hub.SendTo("a", []byte("one"))
	hub.Notify("a", "two")

	assert.Equal(t, []string{"one", "two"}, drain(a))
}

func TestSendToFullBufferEvictsClient(t *testing.T) {
	hub := NewHub(nil, config.Default())
	a := newTestClient(hub, "a")
	hub.Presence().Register("a", a)

	for i := 0; i < sendBufferSize; i++ {
		hub.SendTo("a", []byte("x"))
	}
	_, ok := hub.Presence().Lookup("a")
	require.True(t, ok)

	hub.SendTo("a", []byte("overflow"))

	_, ok = hub.Presence().Lookup("a")
	assert.False(t, ok)
	select {
	case <-a.done:
	default:
		t.Fatal("evicted client was not closed")
	}
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	hub := NewHub(nil, config.Default())
	a := newTestClient(hub, "a")

	a.close()
	a.close()

	assert.False(t, a.enqueue([]byte("late")))
}

func TestBroadcastToConversationSkipsSender(t *testing.T) {
	hub := NewHub(nil, config.Default())
	reg := hub.Conversation("c1")

	a := newTestClient(hub, "a")
	b := newTestClient(hub, "b")
	other := newTestClient(hub, "d")
	reg.Register("a", a)
	reg.Register("b", b)
	hub.Conversation("c2").Register("d", other)

	// "c" is a participant without a live connection.
	hub.BroadcastToConversation("c1", []string{"a", "b", "c"}, "a", []byte("a: hi"))

	assert.Empty(t, drain(a))
	assert.Equal(t, []string{"a: hi"}, drain(b))
	assert.Empty(t, drain(other))
}

func TestBroadcastToConversationContinuesPastFailures(t *testing.T) {
	hub := NewHub(nil, config.Default())
	reg := hub.Conversation("c1")

	b := newTestClient(hub, "b")
	c := newTestClient(hub, "c")
	reg.Register("b", b)
	reg.Register("c", c)
	b.close()

	hub.BroadcastToConversation("c1", []string{"a", "b", "c"}, "a", []byte("a: hi"))

	_, ok := reg.Lookup("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"a: hi"}, drain(c))
}

func TestBroadcastAll(t *testing.T) {
	hub := NewHub(nil, config.Default())
	a := newTestClient(hub, "a")
	b := newTestClient(hub, "b")
	hub.Presence().Register("a", a)
	hub.Presence().Register("b", b)
	b.close()

	hub.BroadcastAll([]byte("announcement"))

	assert.Equal(t, []string{"announcement"}, drain(a))
	assert.Equal(t, 1, hub.Presence().Len())
}

func TestAdmitAfterShutdown(t *testing.T) {
	hub := NewHub(nil, config.Default())
	require.NoError(t, hub.Shutdown(time.Second))

	_, err := hub.admit(newTestClient(hub, "a"))
	assert.ErrorIs(t, err, ErrShuttingDown)
	assert.Equal(t, 0, hub.Presence().Len())
}

func TestAdmitReturnsSuperseded(t *testing.T) {
	hub := NewHub(nil, config.Default())
	first := newTestClient(hub, "a")
	second := newTestClient(hub, "a")

	prev, err := hub.admit(first)
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = hub.admit(second)
	require.NoError(t, err)
	assert.Same(t, first, prev)

	hub.wg.Done()
	hub.wg.Done()
}
