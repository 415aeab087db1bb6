package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cornerwatch-go/internal/models"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PushesSnapshots(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, 20*time.Millisecond, func() []Message {
		return []Message{{Type: TypeStatus, Data: map[string]bool{"monitoring": true}}}
	})

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	msg := readMessage(t, conn)
	assert.Equal(t, TypeStatus, msg.Type)
	assert.Equal(t, true, msg.Data.(map[string]interface{})["monitoring"])
}

func TestHub_NotifyBroadcasts(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Notify(models.Notification{Type: models.NotificationCorner, Timestamp: time.Now()})
	msg := readMessage(t, conn)
	assert.Equal(t, TypeNotification, msg.Type)
	assert.Equal(t, "corner", msg.Data.(map[string]interface{})["type"])
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_NotifyDoesNotWaitForStalledClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	// connected but never reads
	dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	n := models.Notification{
		Type:      models.NotificationMotion,
		Timestamp: time.Now(),
		Data:      map[string]string{"filename": strings.Repeat("m", 2048)},
	}
	var worst time.Duration
	for i := 0; i < 2000; i++ {
		start := time.Now()
		hub.Notify(n)
		if d := time.Since(start); d > worst {
			worst = d
		}
	}
	assert.Less(t, worst, 100*time.Millisecond)
}

func TestHub_FullQueueDisconnects(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	hub.add(c)

	n := models.Notification{Type: models.NotificationCorner, Timestamp: time.Now()}
	hub.Notify(n)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Notify(n)
	assert.Equal(t, 0, hub.ClientCount())
	select {
	case <-c.done:
	default:
		t.Fatal("dropped client was not signalled")
	}
	assert.Len(t, c.send, 1)
}
