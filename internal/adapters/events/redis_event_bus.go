package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
	"github.com/inkatlas/tattoo-directory/internal/domain/providers"
	redisclient "github.com/inkatlas/tattoo-directory/internal/infrastructure/clients/redis"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this loses events rather than blocking the bus.
const subscriberBuffer = 100

// subscription is the local fan-out state for one Redis channel: the single
// upstream Pub/Sub plus every local subscriber listening on it.
type subscription struct {
	pubsub      *redis.PubSub
	subscribers map[chan *entities.SearchEvent]struct{}
}

// RedisEventBus distributes search events across instances via Redis Pub/Sub.
// Each channel has at most one upstream subscription regardless of how many
// local subscribers attach to it.
type RedisEventBus struct {
	client *redisclient.Client

	mu       sync.RWMutex
	channels map[string]*subscription

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		channels: make(map[string]*subscription),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Publish sends an event to every subscriber of the channel, on this
// instance and any other sharing the Redis.
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.SearchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Client().Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe attaches a new subscriber to the channel. The returned channel is
// closed when ctx is cancelled or the bus shuts down.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error) {
	events := make(chan *entities.SearchEvent, subscriberBuffer)

	b.mu.Lock()
	sub, ok := b.channels[channel]
	if !ok {
		sub = &subscription{
			pubsub:      b.client.Client().Subscribe(b.ctx, channel),
			subscribers: make(map[chan *entities.SearchEvent]struct{}),
		}
		b.channels[channel] = sub
		go b.fanOut(channel, sub.pubsub)
	}
	sub.subscribers[events] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.detach(channel, events)
	}()

	return events, nil
}

// fanOut pumps messages from the upstream Pub/Sub to local subscribers.
func (b *RedisEventBus) fanOut(channel string, pubsub *redis.PubSub) {
	defer func() {
		if err := b.teardown(channel); err != nil {
			log.Warn().Str("channel", channel).Err(err).Msg("failed to clean up event channel")
		}
	}()

	upstream := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-upstream:
			if !ok {
				return
			}
			b.deliver(channel, msg.Payload)
		}
	}
}

func (b *RedisEventBus) deliver(channel, payload string) {
	var event entities.SearchEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Warn().Str("channel", channel).Err(err).Msg("discarding malformed event")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	sub, ok := b.channels[channel]
	if !ok {
		return
	}
	for listener := range sub.subscribers {
		select {
		case listener <- &event:
		default:
			log.Debug().Str("channel", channel).Str("event", event.ID).
				Msg("subscriber channel full, skipping event")
		}
	}
}

// detach removes one subscriber; the last one out closes the upstream
// subscription too.
func (b *RedisEventBus) detach(channel string, events chan *entities.SearchEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.channels[channel]
	if !ok {
		return
	}
	if _, attached := sub.subscribers[events]; !attached {
		return
	}

	delete(sub.subscribers, events)
	close(events)

	if len(sub.subscribers) == 0 {
		_ = sub.pubsub.Close()
		delete(b.channels, channel)
	}
}

// teardown closes every subscriber of a channel and its upstream subscription.
func (b *RedisEventBus) teardown(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.channels[channel]
	if !ok {
		return nil
	}

	for listener := range sub.subscribers {
		close(listener)
	}
	delete(b.channels, channel)

	if err := sub.pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	return nil
}

// Unsubscribe drops the channel and all its subscribers.
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return b.teardown(channel)
}

// Close shuts down the bus and every open subscription.
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	open := make([]string, 0, len(b.channels))
	for channel := range b.channels {
		open = append(open, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range open {
		if err := b.teardown(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}
	return nil
}
