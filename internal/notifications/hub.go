package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"courtside/internal/middleware"
	"courtside/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser     = 8
	maxTotalConns       = 10000
	maxChannelsPerConn  = 32
	actionSubscribe     = "subscribe"
	actionUnsubscribe   = "unsubscribe"
	replySubscribed     = "subscribed"
	replyUnsubscribed   = "unsubscribed"
	replyError          = "error"
	errConnLimitReached = "connection limit reached"
)

// SubscriptionVerifier validates a subscription token and returns the user and
// channel it grants.
type SubscriptionVerifier func(token string) (userID uint, channel string, err error)

// ErrConnectionLimit is returned by Register when a limit is reached.
var ErrConnectionLimit = errors.New(errConnLimitReached)

// Hub tracks websocket clients and the channels each one subscribed to.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	perUser  map[uint]int
	channels map[string]map[*Client]struct{}
	verify   SubscriptionVerifier
}

// NewHub creates a hub that accepts subscriptions approved by verify.
func NewHub(verify SubscriptionVerifier) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		perUser:  make(map[uint]int),
		channels: make(map[string]map[*Client]struct{}),
		verify:   verify,
	}
}

// Register adds a connection for userID.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= maxTotalConns || h.perUser[userID] >= maxConnsPerUser {
		return nil, ErrConnectionLimit
	}
	c := newClient(h, conn, userID)
	h.clients[c] = struct{}{}
	h.perUser[userID]++
	observability.WebSocketConnectionsTotal.Inc()
	return c, nil
}

// UnregisterClient removes a client and all its subscriptions. Safe to call twice.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	for ch := range c.channels {
		h.removeLocked(c, ch)
	}
	delete(h.clients, c)
	if h.perUser[c.UserID]--; h.perUser[c.UserID] <= 0 {
		delete(h.perUser, c.UserID)
	}
	observability.WebSocketConnectionsTotal.Dec()
}

// Subscribe adds c to channel.
func (h *Hub) Subscribe(c *Client, channel string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return errors.New("client is not registered")
	}
	if _, ok := c.channels[channel]; ok {
		return nil
	}
	if len(c.channels) >= maxChannelsPerConn {
		return errors.New("too many subscriptions")
	}
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Client]struct{})
		h.channels[channel] = subs
	}
	subs[c] = struct{}{}
	c.channels[channel] = struct{}{}
	return nil
}

// Unsubscribe removes c from channel.
func (h *Hub) Unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, channel)
}

func (h *Hub) removeLocked(c *Client, channel string) {
	delete(c.channels, channel)
	if subs, ok := h.channels[channel]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Subscribers returns how many clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Deliver fans payload out to every subscriber of channel and returns how many
// clients accepted it.
func (h *Hub) Deliver(channel, payload string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data := []byte(payload)
	sent := 0
	for c := range h.channels[channel] {
		if c.TrySend(data) {
			sent++
		}
	}
	return sent
}

type controlMessage struct {
	Action  string `json:"action"`
	Token   string `json:"token,omitempty"`
	Channel string `json:"channel,omitempty"`
}

type controlReply struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Hub) reply(c *Client, r controlReply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	c.TrySend(data)
}

// handleIncoming processes subscribe/unsubscribe control messages. A subscribe
// must carry a subscription token issued to the connected user.
func (h *Hub) handleIncoming(c *Client, raw []byte) {
	var msg controlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.reply(c, controlReply{Type: replyError, Error: "malformed message"})
		return
	}

	switch msg.Action {
	case actionSubscribe:
		if h.verify == nil {
			h.reply(c, controlReply{Type: replyError, Error: "subscriptions disabled"})
			return
		}
		userID, channel, err := h.verify(msg.Token)
		if err != nil || userID != c.UserID || !ValidChannel(channel) {
			h.reply(c, controlReply{Type: replyError, Error: "invalid subscription token"})
			return
		}
		if err := h.Subscribe(c, channel); err != nil {
			h.reply(c, controlReply{Type: replyError, Channel: channel, Error: err.Error()})
			return
		}
		h.reply(c, controlReply{Type: replySubscribed, Channel: channel})
	case actionUnsubscribe:
		h.Unsubscribe(c, msg.Channel)
		h.reply(c, controlReply{Type: replyUnsubscribed, Channel: msg.Channel})
	default:
		h.reply(c, controlReply{Type: replyError, Error: "unknown action"})
	}
}

// StartWiring forwards every published event to the hub's subscribers.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(channel, payload string) {
		h.Deliver(channel, payload)
	})
}

// Shutdown closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.Conn == nil || c.Conn.Conn == nil {
			continue
		}
		if err := c.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			middleware.Logger.Debug("failed to write close message", slog.Uint64("user_id", uint64(c.UserID)), slog.Any("error", err))
		}
		_ = c.Conn.Close()
	}
	observability.WebSocketConnectionsTotal.Sub(float64(len(h.clients)))
	h.clients = make(map[*Client]struct{})
	h.perUser = make(map[uint]int)
	h.channels = make(map[string]map[*Client]struct{})
	return nil
}
