package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub(nil)

	a := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	b := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	other := &Connection{SessionID: "s2", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.BroadcastToSession("s1", string(MsgEvaluationResult), map[string]string{"answerId": "a1"})

	for _, conn := range []*Connection{a, b} {
		var msg Message
		require.NoError(t, json.Unmarshal(recv(t, conn.Send), &msg))
		assert.Equal(t, MsgEvaluationResult, msg.Type)
	}

	select {
	case <-other.Send:
		t.Fatal("observer of another session received the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(nil)

	conn := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(conn)
	hub.Unregister(conn)

	// Send channel is closed once the hub has processed the unregister.
	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHubDisconnectSession(t *testing.T) {
	hub := NewHub(nil)

	conn := &Connection{SessionID: "s1", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(conn)

	hub.DisconnectSession("s1")

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	// Broadcasting afterwards must not panic or deliver anything.
	hub.BroadcastToSession("s1", string(MsgStageAdvanced), nil)
	time.Sleep(50 * time.Millisecond)
}
