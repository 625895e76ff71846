package outbound

import (
	"context"

	"bidding-service/internal/domain/notification"

	"github.com/google/uuid"
)

// EventType represents the type of event being broadcasted
type EventType string

const (
	EventTypeNotification EventType = "notification"
	EventTypeError        EventType = "error"
)

// Event represents a broadcast event
type Event struct {
	Type      EventType              `json:"type"`
	Topic     string                 `json:"topic"`
	BiddingID uuid.UUID              `json:"bidding_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Broadcaster defines the interface for broadcasting events to live clients
type Broadcaster interface {
	// Subscribe subscribes a client to a topic. When a client subscribes to
	// multiple topics, all events are delivered to the same channel
	Subscribe(ctx context.Context, topic string, clientID string, eventChan chan Event) error

	// Unsubscribe unsubscribes a client from a topic
	Unsubscribe(ctx context.Context, topic string, clientID string) error

	// Publish publishes an event to all subscribers of a topic
	Publish(ctx context.Context, topic string, event Event) error

	// IsSubscribed checks if a client is subscribed to a topic
	IsSubscribed(ctx context.Context, topic string, clientID string) bool
}

// Dispatcher delivers notification intents. Implementations decide how
// recipients are resolved and which transports carry the message.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent notification.Intent) error
}

// IntentPublisher forwards intents to an external stream
type IntentPublisher interface {
	PublishIntent(ctx context.Context, intent notification.Intent) error
}

// MemberTopic is the topic carrying notifications addressed to one member
func MemberTopic(memberID uuid.UUID) string {
	return "notify:member:" + memberID.String()
}
