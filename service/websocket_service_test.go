package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docuchat-be/database"
	"github.com/tieubaoca/docuchat-be/types"
)

func dialTestWebSocket(t *testing.T, ws *WebSocketService) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(ws.HandleChat))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketActiveConnectionOutlivesReadTimeout(t *testing.T) {
	generator := &fakeGenerator{GenerateFn: func(ctx context.Context, messages []types.Message) (string, error) {
		return "ok", nil
	}}
	rag := NewRAGService(questionEmbedder(), database.NewMemoryStore(), generator, 3, 3000)
	ws := NewWebSocketService(rag, NewSessionManager(10))
	ws.readTimeout = 100 * time.Millisecond

	conn := dialTestWebSocket(t, ws)

	// Each ping arrives before the deadline but the whole exchange runs
	// well past it; the connection must survive because every read
	// extends the deadline.
	for i := 0; i < 5; i++ {
		time.Sleep(60 * time.Millisecond)
		require.NoError(t, conn.WriteJSON(types.WebsocketRequest{Type: types.TypeWebsocketPing}),
			"connection dropped after %d pings", i)
		var resp types.WebsocketResponse
		require.NoError(t, conn.ReadJSON(&resp))
		assert.Equal(t, types.TypeWebsocketPong, resp.Type)
	}
}

func TestWebSocketAskAndReset(t *testing.T) {
	generator := &fakeGenerator{GenerateFn: func(ctx context.Context, messages []types.Message) (string, error) {
		return "the answer", nil
	}}
	rag := NewRAGService(questionEmbedder(), seededStore(t), generator, 2, 3000)
	ws := NewWebSocketService(rag, NewSessionManager(10))

	conn := dialTestWebSocket(t, ws)

	require.NoError(t, conn.WriteJSON(types.WebsocketRequest{
		Type:    types.TypeWebsocketAsk,
		Payload: types.WebsocketAskPayload{Question: "tell me about dogs"},
	}))
	var resp types.WebsocketResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, types.TypeWebsocketAsk, resp.Type)

	require.NoError(t, conn.WriteJSON(types.WebsocketRequest{Type: types.TypeWebsocketReset}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, types.TypeWebsocketReset, resp.Type)
}
