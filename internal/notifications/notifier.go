// Package notifications publishes content events over Redis pub/sub and fans
// them out to subscribed websocket clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"courtside/internal/middleware"
	"courtside/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventPostLiked      = "post.liked"
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
	EventCommentLiked   = "comment.liked"
	EventReplyCreated   = "reply.created"
)

const channelPrefix = "events:"

// Event is the JSON envelope delivered to websocket clients.
type Event struct {
	Type    string    `json:"type"`
	Channel string    `json:"channel"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// TeamChannel is the channel carrying a team board's events.
func TeamChannel(teamID uint) string {
	return channelPrefix + "team:" + strconv.FormatUint(uint64(teamID), 10)
}

// PostChannel is the channel carrying a post thread's events.
func PostChannel(postID uint) string {
	return channelPrefix + "post:" + strconv.FormatUint(uint64(postID), 10)
}

// ValidChannel reports whether name is a team or post channel.
func ValidChannel(name string) bool {
	rest, ok := strings.CutPrefix(name, channelPrefix)
	if !ok {
		return false
	}
	kind, id, ok := strings.Cut(rest, ":")
	if !ok || (kind != "team" && kind != "post") {
		return false
	}
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}

// Notifier provides helpers to publish events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends an event to channel. Without Redis it is a no-op.
func (n *Notifier) Publish(ctx context.Context, channel, eventType string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	data, err := json.Marshal(Event{Type: eventType, Channel: channel, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
	return nil
}

// StartSubscriber subscribes to every event channel and calls onMessage for
// each incoming message until ctx is done.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, channelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
