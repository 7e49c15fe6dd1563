package providers

import (
	"context"

	"github.com/inkatlas/tattoo-directory/internal/domain/entities"
)

// EventBus broadcasts search events between instances so dashboards and other
// consumers can follow search activity without polling.
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.SearchEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelSearchActivity carries every search event across instances.
const EventChannelSearchActivity = "search:events"

// SessionChannel returns the channel carrying one session's events.
func SessionChannel(sessionID string) string {
	return "search:session:" + sessionID
}
