package messaging

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-go-golems/spelunker/pkg/helpers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrNoReceivers = errors.New("message has no receivers")

const (
	metadataPerformative = "performative"
	metadataSender       = "sender"

	defaultInboxSize = 100
)

// Tap observes every message the bus publishes, in publish order.
type Tap func(m *Message)

// Bus carries messages between agents over an in-process watermill pub/sub.
// Every agent identity gets its own topic. Publishing blocks until the
// receiver has taken the message, which keeps send order per sender and
// receiver.
type Bus struct {
	logger    watermill.LoggerAdapter
	pubsub    *gochannel.GoChannel
	publisher message.Publisher
	inboxSize int

	mu   sync.RWMutex
	taps []Tap
}

type BusOption func(*Bus)

func WithLogger(logger watermill.LoggerAdapter) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithVerbose routes watermill's own logs to the global zerolog logger.
func WithVerbose(verbose bool) BusOption {
	return func(b *Bus) {
		if verbose {
			b.logger = helpers.NewWatermill(log.Logger)
		}
	}
}

func WithTap(tap Tap) BusOption {
	return func(b *Bus) {
		b.taps = append(b.taps, tap)
	}
}

func WithInboxSize(size int) BusOption {
	return func(b *Bus) {
		b.inboxSize = size
	}
}

func NewBus(options ...BusOption) *Bus {
	b := &Bus{
		logger:    watermill.NopLogger{},
		inboxSize: defaultInboxSize,
	}
	for _, o := range options {
		o(b)
	}

	b.pubsub = gochannel.NewGoChannel(gochannel.Config{
		BlockPublishUntilSubscriberAck: true,
	}, b.logger)
	b.publisher = helpers.ConversationPublisherDecorator{Publisher: b.pubsub}

	return b
}

// TopicFor is the topic an agent identity receives on.
func TopicFor(identity string) string {
	return "agent." + identity
}

func (b *Bus) AddTap(tap Tap) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.taps = append(b.taps, tap)
}

// Publish delivers m to each of its receivers. Messages to identities nobody
// listens on are dropped.
func (b *Bus) Publish(ctx context.Context, m *Message) error {
	if len(m.Receivers) == 0 {
		return errors.Wrapf(ErrNoReceivers, "%s from %s", m.Performative, m.Sender)
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "could not marshal message")
	}

	b.mu.RLock()
	taps := b.taps
	b.mu.RUnlock()
	for _, tap := range taps {
		tap(m)
	}

	for _, receiver := range m.Receivers {
		wm := message.NewMessage(watermill.NewUUID(), payload)
		wm.Metadata.Set(metadataPerformative, string(m.Performative))
		wm.Metadata.Set(metadataSender, m.Sender)
		wm.SetContext(helpers.ContextWithConversationID(ctx, m.ConversationID))

		if err := b.publisher.Publish(TopicFor(receiver), wm); err != nil {
			return errors.Wrapf(err, "could not publish %s to %s", m.Performative, receiver)
		}
	}
	return nil
}

// Subscribe returns the inbox of identity. The channel closes once ctx is
// done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, identity string) (<-chan *Message, error) {
	msgs, err := b.pubsub.Subscribe(ctx, TopicFor(identity))
	if err != nil {
		return nil, errors.Wrapf(err, "could not subscribe %s", identity)
	}

	out := make(chan *Message, b.inboxSize)
	go func() {
		defer close(out)
		for wm := range msgs {
			m := &Message{}
			if err := json.Unmarshal(wm.Payload, m); err != nil {
				b.logger.Error("Dropping undecodable message", err, watermill.LogFields{
					"message_uuid": wm.UUID,
					"identity":     identity,
				})
				wm.Ack()
				continue
			}
			select {
			case out <- m:
				wm.Ack()
			case <-ctx.Done():
				wm.Nack()
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
