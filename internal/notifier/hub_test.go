package notifier

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/pkg/model"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	c1 := dialHub(t, srv)
	c2 := dialHub(t, srv)
	waitForClients(t, hub, 2)

	sent := model.Notice{Level: "warn", Title: "Company Name Typo Detected", Message: "Did you mean one of these? Acme Trading Sdn Bhd"}
	hub.Notify(sent)

	for _, conn := range []*websocket.Conn{c1, c2} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got model.Notice
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, sent.Title, got.Title)
		assert.Equal(t, sent.Message, got.Message)
		assert.False(t, got.At.IsZero(), "timestamp is stamped on broadcast")
	}
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)

	// Broadcasting with no clients must not block or panic.
	hub.Notify(model.Notice{Level: "info", Title: "Quote Processor", Message: "ok"})
}
