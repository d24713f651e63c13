package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/skill_exchange_server/internal/pkg/jwt"
	"github.com/qs3c/skill_exchange_server/internal/pkg/ws"
)

const wsSecret = "ws-test-secret"

func setupWebSocketServer(t *testing.T, origins []string) (*httptest.Server, *ws.Hub) {
	t.Helper()

	hub := ws.NewHub(testLog)
	router := gin.New()
	router.GET("/ws", NewWebSocketHandler(hub, wsSecret, origins, testLog).Handle)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, hub
}

func wsURL(server *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
}

func TestWebSocketHandler_Handle(t *testing.T) {
	server, hub := setupWebSocketServer(t, []string{"*"})

	token, err := jwt.GenerateToken(42, wsSecret, 1)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, token), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.IsOnline(42) }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToUser(42, &ws.Message{Type: "tutoring_update", Data: map[string]string{"status": "ACCEPTED"}}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tutoring_update","data":{"status":"ACCEPTED"}}`, string(data))

	conn.Close()
	assert.Eventually(t, func() bool { return !hub.IsOnline(42) }, time.Second, 10*time.Millisecond)
}

func TestWebSocketHandler_Rejects(t *testing.T) {
	server, _ := setupWebSocketServer(t, []string{"https://app.example.com"})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(server, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := jwt.GenerateToken(7, wsSecret, 1)
	require.NoError(t, err)
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(server, token), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
