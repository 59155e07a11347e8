package kafka

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bms/internal/domain"
	"github.com/vladislavdragonenkov/bms/internal/mediator"
)

// EnvelopePublisher отправляет обёрнутое событие в топик брокера.
type EnvelopePublisher interface {
	PublishEnvelope(topic string, envelope Envelope) error
}

// Forwarder — подписчик mediator, пересылающий события платформы в Kafka.
// Ошибка пересылки возвращается наверх: outbox worker оставит сообщение
// pending и повторит доставку в следующем цикле.
type Forwarder struct {
	publisher EnvelopePublisher
	logger    *log.Entry
}

// NewForwarder создаёт пересыльщик событий в Kafka.
func NewForwarder(publisher EnvelopePublisher) *Forwarder {
	return &Forwarder{
		publisher: publisher,
		logger:    log.WithField("component", "kafka-forwarder"),
	}
}

// Register подписывает пересыльщик на все внешние события платформы.
func (f *Forwarder) Register(m *mediator.Mediator) {
	handler := mediator.EventHandlerFunc(f.handle)
	for _, eventType := range []string{
		domain.EventTypeOrderCreated,
		domain.EventTypeOrderCancelled,
		domain.EventTypeOrderRescheduled,
		domain.EventTypeOrderStarted,
		domain.EventTypeOrderFinished,
		domain.EventTypeUserCreated,
	} {
		m.RegisterEvent(eventType, handler)
	}
}

func (f *Forwarder) handle(_ context.Context, event domain.Event) (any, error) {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return nil, fmt.Errorf("wrap event %s: %w", event.EventType(), err)
	}

	topic := TopicFor(event.EventType())
	if err := f.publisher.PublishEnvelope(topic, envelope); err != nil {
		return nil, fmt.Errorf("forward event %s to %s: %w", event.EventType(), topic, err)
	}

	f.logger.WithFields(log.Fields{
		"event_type": event.EventType(),
		"topic":      topic,
	}).Debug("event forwarded to kafka")

	return nil, nil
}
