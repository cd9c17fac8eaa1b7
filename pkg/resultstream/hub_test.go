package resultstream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	hub := NewHub(HubConfig{ClientBufferSize: 4, Logger: logger})
	server := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_BroadcastDeliversToConnectedClient(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server)
	defer conn.Close()

	require.Eventually(t, func() bool { return clientCount(hub) == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(Event{RunID: "run-1", Type: EventCapitalTick, Data: map[string]float64{"capital": 100500}})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "run-1")
	require.Contains(t, string(msg), "capital_tick")
}

func TestHub_DisconnectRemovesClient(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server)

	require.Eventually(t, func() bool { return clientCount(hub) == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return clientCount(hub) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastWithNoClientsIsNoOp(t *testing.T) {
	hub, _ := newTestHub(t)
	hub.Broadcast(Event{RunID: "run-1", Type: EventRunComplete})
}

func clientCount(h *Hub) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
