package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Hissaria17/alcrm-sub001/internal/broadcast"
)

const defaultLogoutChannel = "alcrm:logout"

// LogoutChannel carries logout signals across processes over Redis
// pub/sub. Publishes go to the Redis channel only; the receive loop
// fans every message (including our own) out to local subscribers, so
// all processes observe the same stream in the same way.
type LogoutChannel struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
	local   *broadcast.LocalBroadcaster
	pubsub  *redis.PubSub
	done    chan struct{}
}

// NewLogoutChannel subscribes to the logout channel and starts the
// receive loop. Callers must Close to release the subscription.
func NewLogoutChannel(ctx context.Context, client redis.UniversalClient, logger *slog.Logger) (*LogoutChannel, error) {
	c := &LogoutChannel{
		client:  client,
		channel: defaultLogoutChannel,
		logger:  logger,
		local:   broadcast.NewLocalBroadcaster(),
		done:    make(chan struct{}),
	}

	c.pubsub = client.Subscribe(ctx, c.channel)
	// Confirm the subscription before returning so no publish can race
	// ahead of the receive loop.
	if _, err := c.pubsub.Receive(ctx); err != nil {
		_ = c.pubsub.Close()
		return nil, fmt.Errorf("subscribe logout channel: %w", err)
	}

	go c.receiveLoop()
	return c, nil
}

// Publish sends the signal to every process subscribed to the channel.
func (c *LogoutChannel) Publish(ctx context.Context, sig broadcast.Signal) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal logout signal: %w", err)
	}
	if err := c.client.Publish(ctx, c.channel, data).Err(); err != nil {
		return fmt.Errorf("publish logout signal: %w", err)
	}
	return nil
}

// Subscribe registers a local observer of the cross-process stream.
func (c *LogoutChannel) Subscribe() (func(), <-chan broadcast.Signal) {
	return c.local.Subscribe()
}

// Close tears down the Redis subscription and stops the receive loop.
func (c *LogoutChannel) Close() error {
	err := c.pubsub.Close()
	<-c.done
	return err
}

func (c *LogoutChannel) receiveLoop() {
	defer close(c.done)
	for msg := range c.pubsub.Channel() {
		var sig broadcast.Signal
		if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
			c.logger.Warn("dropping malformed logout signal", "error", err)
			continue
		}
		// Local fan-out never blocks and never fails.
		_ = c.local.Publish(context.Background(), sig)
	}
}

var _ broadcast.Broadcaster = (*LogoutChannel)(nil)
