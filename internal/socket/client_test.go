package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/six-app/six-backend/internal/logger"
)

// startClientServer upgrades one connection, wires a Client into hub with
// both pumps running, and hands the Client back on started.
func startClientServer(hub *Hub, started chan<- *Client) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		client := NewClient(conn, hub, uuid.New(), cancel, logger.NewNop())
		hub.Subscribe(client, []string{ChannelEngagement})
		go client.ReadLoop(ctx)
		go client.WriteLoop(ctx)
		started <- client
	}))
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

// waitClosed blocks until the client's outbound channel is closed,
// failing the test if teardown never happens.
func waitClosed(t *testing.T, client *Client) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-client.Outbound:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("client outbound channel never closed after disconnect")
		}
	}
}

func subscriberCount(hub *Hub, channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.channels[channel])
}

func TestClientDisconnectTearsDownBothPumps(t *testing.T) {
	hub := NewHub(logger.NewNop())
	started := make(chan *Client, 1)
	srv := startClientServer(hub, started)
	defer srv.Close()

	peer := dialWS(t, srv)
	client := <-started
	require.Equal(t, 1, subscriberCount(hub, ChannelEngagement))

	// Peer hangs up. The read pump sees the error first and closes the
	// client; the write pump's deferred close must then be a no-op
	// rather than closing the outbound channel a second time.
	require.NoError(t, peer.Close())
	waitClosed(t, client)

	require.Eventually(t, func() bool {
		return subscriberCount(hub, ChannelEngagement) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientCloseIsIdempotent(t *testing.T) {
	hub := NewHub(logger.NewNop())
	started := make(chan *Client, 1)
	srv := startClientServer(hub, started)
	defer srv.Close()

	peer := dialWS(t, srv)
	defer peer.Close()
	client := <-started

	require.NotPanics(t, func() {
		client.close()
		client.close()
	})
	waitClosed(t, client)
	require.Equal(t, 0, subscriberCount(hub, ChannelEngagement))
}
