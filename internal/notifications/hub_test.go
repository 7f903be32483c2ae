package notifications

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "hello")
	assert.Equal(t, "hello", string(<-a.Send))
	assert.Equal(t, "hello", string(<-b.Send))
	assert.Empty(t, other.Send)

	assert.True(t, hub.IsOnline(1))
	assert.Equal(t, 3, hub.ConnectionCount())

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 2, hub.ConnectionCount())
	hub.UnregisterClient(b)
	assert.False(t, hub.IsOnline(1))

	_, open := <-a.Send
	assert.False(t, open, "unregister closes the send channel")
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(9, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(9, nil)
	assert.ErrorIs(t, err, ErrUserFull)

	_, err = hub.Register(10, nil)
	assert.NoError(t, err)
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer+10; i++ {
			hub.Broadcast(3, "x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client")
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(4, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, hub.ConnectionCount())

	hub.UnregisterClient(c)
	hub.Broadcast(4, "late")

	_, err = hub.Register(4, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

// TestHub_EndToEnd publishes through Redis and reads the event from a real websocket.
func TestHub_EndToEnd(t *testing.T) {
	_, rdb := newRedis(t)
	hub := NewHub()
	notifier := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		id, _ := strconv.ParseUint(conn.Query("user"), 10, 64)
		_ = hub.Serve(conn, uint(id))
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	conn, _, err := gorillaws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws?user=7", nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return hub.IsOnline(7) }, testEventuallyTimeout, testPollInterval)

	payload := `{"type":"notification_created","payload":{"id":1}}`
	require.NoError(t, notifier.PublishUser(ctx, 7, payload))
	require.NoError(t, notifier.PublishUser(ctx, 8, `{"type":"not_for_you"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, gorillaws.TextMessage, kind)
	assert.JSONEq(t, payload, string(data))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return !hub.IsOnline(7) }, 2*testEventuallyTimeout, testPollInterval)
}
