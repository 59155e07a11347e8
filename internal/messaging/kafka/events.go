package kafka

import (
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

// Topics для Kafka
const (
	TopicOrderEvents = "bms.order.events"
	TopicUserEvents  = "bms.user.events"
)

// Envelope — обёртка доменного события для внешних потребителей.
// Payload хранится как есть, в том виде, в каком событие лежало в outbox.
type Envelope struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	OccurredAt  time.Time       `json:"occurred_at"`
	PublishedAt time.Time       `json:"published_at"`
	Payload     json.RawMessage `json:"payload"`
}

// NewEnvelope упаковывает доменное событие для отправки в брокер.
func NewEnvelope(event domain.Event) (Envelope, error) {
	payload, err := domain.MarshalEvent(event)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:     event.EventID(),
		EventType:   event.EventType(),
		OccurredAt:  event.OccurredAt(),
		PublishedAt: time.Now().UTC(),
		Payload:     payload,
	}, nil
}

// TopicFor выбирает топик по типу события.
func TopicFor(eventType string) string {
	if eventType == domain.EventTypeUserCreated {
		return TopicUserEvents
	}
	return TopicOrderEvents
}
