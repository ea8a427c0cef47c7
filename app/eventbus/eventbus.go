package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus closed")

// EventBus publishes JSON payloads on topics. It uses core NATS when a URL is
// configured and an in-process channel otherwise.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsURL    string
	wmLogger   watermill.LoggerAdapter
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ message.Subscriber = (*EventBus)(nil)

// NewEventBus connects to NATS, or falls back to a gochannel pub/sub when natsURL is empty.
func NewEventBus(natsURL string, logger *slog.Logger) (*EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger)

	bus := &EventBus{natsURL: natsURL, wmLogger: wmLogger, logger: logger}

	if natsURL == "" {
		logger.Info("No NATS URL configured, using in-process event bus")
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		bus.publisher = pubSub
		bus.subscriber = pubSub
		return bus, nil
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:       natsURL,
			Marshaler: &nats.NATSMarshaler{},
			JetStream: nats.JetStreamConfig{Disabled: true},
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
				nc.MaxReconnects(-1),
				nc.ReconnectWait(2 * time.Second),
			},
		},
		wmLogger,
	)
	if err != nil {
		logger.Error("Failed to create NATS publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	bus.publisher = publisher
	logger.Info("Connected event bus to NATS", slog.String("url", natsURL))
	return bus, nil
}

// Publish marshals payload as JSON and publishes it on topic.
func (b *EventBus) Publish(ctx context.Context, topic string, payload any) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("content_type", "application/json")
	msg.Metadata.Set("topic", topic)
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	b.logger.DebugContext(ctx, "Published event",
		slog.String("topic", topic),
		slog.String("message_id", msg.UUID),
	)
	return nil
}

// Subscribe returns the messages published on topic until ctx is done.
func (b *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if b.subscriber == nil {
		subscriber, err := nats.NewSubscriber(
			nats.SubscriberConfig{
				URL:         b.natsURL,
				Unmarshaler: &nats.NATSMarshaler{},
				JetStream:   nats.JetStreamConfig{Disabled: true},
			},
			b.wmLogger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
		}
		b.subscriber = subscriber
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close closes the publisher and any subscriber.
func (b *EventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	// gochannel uses one value for both sides.
	if b.subscriber != nil && any(b.subscriber) != any(b.publisher) {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
