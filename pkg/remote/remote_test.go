package remote

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub()
	go h.Run()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastReachesConnectedClient(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)

	// give the server goroutine time to register the client
	time.Sleep(50 * time.Millisecond)

	h.Broadcast([]byte{1, 2, 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, msg)
}

func TestHub_InputRelaysClientButtonMask(t *testing.T) {
	h, srv := newTestHub(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x42}))

	select {
	case mask := <-h.Input:
		require.EqualValues(t, 0x42, mask)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for input relay")
	}
}
