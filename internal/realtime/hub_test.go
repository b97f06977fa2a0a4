package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
)

func TestHubBroadcastAndUnregister(t *testing.T) {
	hub := NewHub(logger.Nop())
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	a := &Client{ID: "a", UserID: "u1", Send: make(chan []byte, 4)}
	b := &Client{ID: "b", UserID: "u2", Send: make(chan []byte, 4)}
	hub.RegisterClient(a)
	hub.RegisterClient(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.BroadcastJSON(map[string]string{"title": "Lead baru"})
	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.Send:
			assert.JSONEq(t, `{"title":"Lead baru"}`, string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s got nothing", c.ID)
		}
	}

	hub.UnregisterClient(a)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-a.Send
	assert.False(t, open)
}

func TestNotifierWithoutRedisBroadcastsLocally(t *testing.T) {
	hub := NewHub(logger.Nop())
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	c := &Client{ID: "c", Send: make(chan []byte, 1)}
	hub.RegisterClient(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	n := NewNotifier(hub, nil, logger.Nop())
	n.Publish(context.Background(), "notification", map[string]string{"title": "Booking baru"})

	select {
	case msg := <-c.Send:
		var env struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &env))
		assert.Equal(t, "notification", env.Type)
		assert.Equal(t, "Booking baru", env.Data["title"])
	case <-time.After(time.Second):
		t.Fatal("no broadcast")
	}

	n.Run(context.Background())
}
