package helpers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

// WatermillZerologAdapter sends watermill's internal logs to zerolog.
type WatermillZerologAdapter struct {
	logger zerolog.Logger
}

func (w *WatermillZerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	w.logger.Error().Fields(map[string]interface{}(fields)).Err(err).Msg(msg)
}

func (w *WatermillZerologAdapter) Info(msg string, fields watermill.LogFields) {
	// watermill is chatty at INFO (every subscribe, every close)
	w.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (w *WatermillZerologAdapter) Debug(msg string, fields watermill.LogFields) {
	w.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (w *WatermillZerologAdapter) Trace(msg string, fields watermill.LogFields) {
	w.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (w *WatermillZerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	l := w.logger.With().Fields(map[string]interface{}(fields)).Logger()
	return &WatermillZerologAdapter{logger: l}
}

func NewWatermill(logger zerolog.Logger) *WatermillZerologAdapter {
	return &WatermillZerologAdapter{logger: logger.With().Str("component", "watermill").Logger()}
}

var _ watermill.LoggerAdapter = &WatermillZerologAdapter{}

// ConversationIDMetadataKey is the watermill metadata key carrying the
// conversation a message belongs to.
const ConversationIDMetadataKey = "conversation_id"

type conversationIDKeyType string

const conversationIDKey conversationIDKeyType = "conversation_id"

func ContextWithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, conversationIDKey, conversationID)
}

func ConversationIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(conversationIDKey).(string)
	return v, ok && v != ""
}

// ConversationPublisherDecorator stamps the conversation id found in each
// message's context onto its metadata, unless the metadata already has one.
type ConversationPublisherDecorator struct {
	message.Publisher
}

func (c ConversationPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for i := range messages {
		if messages[i].Metadata.Get(ConversationIDMetadataKey) != "" {
			continue
		}
		if id, ok := ConversationIDFromContext(messages[i].Context()); ok {
			messages[i].Metadata.Set(ConversationIDMetadataKey, id)
		}
	}

	return c.Publisher.Publish(topic, messages...)
}
