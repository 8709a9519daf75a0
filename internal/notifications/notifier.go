// Package notifications carries persisted chat messages to connected
// websocket clients through Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"

	"worklane/internal/middleware"
	"worklane/internal/models"
)

// Notifier publishes chat events into Redis channels. With a nil client every
// operation is a no-op, which keeps tests and single-node setups simple.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// ChatChannel derives the Redis channel name for a chat.
func ChatChannel(chatID uint) string {
	return "chat:room:" + strconv.FormatUint(uint64(chatID), 10)
}

// PublishChatMessage mirrors a persisted message onto the chat's channel. The
// payload is the hub event envelope, so subscribers can fan it out as-is.
func (n *Notifier) PublishChatMessage(ctx context.Context, chatID uint, msg *models.Message) error {
	if n.rdb == nil {
		return nil
	}
	event := ChatEvent{
		Type:    EventNewMessage,
		ChatID:  chatID,
		Payload: msg,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal chat event: %w", err)
	}
	return n.rdb.Publish(ctx, ChatChannel(chatID), payload).Err()
}

// StartChatSubscriber subscribes to `chat:room:*` and calls onMessage for each
// incoming message. The subscription goroutine stops when ctx is canceled.
func (n *Notifier) StartChatSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:room:*")
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
							middleware.Logger.Error("panic in chat subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
