package server

import (
	"context"
	"net"
	"net/url"
	"testing"
	"time"

	"courtside/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocketDeliversSubscribedEvents(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnv(t, rdb)
	require.NoError(t, env.srv.StartRealtime())
	t.Cleanup(func() { env.srv.shutdownFn() })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.ShutdownWithTimeout(time.Second) })

	_, token := env.user(t, "alice")
	resp, body := env.request(t, fiber.MethodGet, "/api/auth/websocket-access", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	connToken := decodeObject(t, body)["token"].(string)

	channel := notifications.TeamChannel(lakersID)
	resp, body = env.request(t, fiber.MethodGet, "/api/auth/subscription?channel="+channel, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	subToken := decodeObject(t, body)["token"].(string)

	u := url.URL{Scheme: "ws", Host: ln.Addr().String(), Path: "/api/ws", RawQuery: "token=" + url.QueryEscape(connToken)}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "subscribe", "token": "forged"}))
	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply["type"])

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "subscribe", "token": subToken}))
	reply = nil
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "subscribed", reply["type"])
	assert.Equal(t, channel, reply["channel"])

	env.createPost(t, token, lakersID, "live update")
	env.createPost(t, token, celticsID, "other board")

	var event notifications.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, notifications.EventPostCreated, event.Type)
	assert.Equal(t, channel, event.Channel)
	payload := event.Payload.(map[string]any)
	assert.EqualValues(t, lakersID, payload["team_id"])
}
