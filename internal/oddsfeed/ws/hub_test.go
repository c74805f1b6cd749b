package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitSubscribed(t *testing.T, h *Hub, matchID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.subs[matchID]) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHubSubscribeAndBroadcast(t *testing.T) {
	h := NewHub(func(*http.Request) bool { return true })
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MatchID: "m1"}))
	waitSubscribed(t, h, "m1")

	h.Broadcast(PoolUpdate{MatchID: "m1", Payload: map[string]int64{"home_win": 500}})

	var got PoolUpdate
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "m1", got.MatchID)

	// partida não assinada não chega ao cliente
	h.Broadcast(PoolUpdate{MatchID: "m2"})
	h.Broadcast(PoolUpdate{MatchID: "m1"})
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "m1", got.MatchID)
}

func TestHubBroadcastAndPongConcurrently(t *testing.T) {
	h := NewHub(func(*http.Request) bool { return true })
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", MatchID: "m1"}))
	waitSubscribed(t, h, "m1")

	// broadcasts (goroutine do subscriber) e pongs (goroutine de leitura da
	// conexão) disputam a mesma conexão; cada mensagem deve chegar inteira
	const n = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			h.Broadcast(PoolUpdate{MatchID: "m1", Payload: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			if err := conn.WriteJSON(ClientMsg{Type: "ping"}); err != nil {
				return
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for got := 0; got < 2*n; got++ {
		_, _, err := conn.ReadMessage()
		require.NoError(t, err)
	}
	wg.Wait()
}
