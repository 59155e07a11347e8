package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bms/internal/domain"
	"github.com/vladislavdragonenkov/bms/internal/mediator"
)

type stubPublisher struct {
	err       error
	topics    []string
	envelopes []Envelope
}

func (s *stubPublisher) PublishEnvelope(topic string, envelope Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.topics = append(s.topics, topic)
	s.envelopes = append(s.envelopes, envelope)
	return nil
}

func TestForwarderPublishesEnvelope(t *testing.T) {
	t.Parallel()

	publisher := &stubPublisher{}
	m := mediator.New()
	NewForwarder(publisher).Register(m)

	event := domain.OrderCreatedEvent{
		EventMeta:   domain.EventMeta{ID: "e-1", Occurred: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)},
		OrderID:     "order-1",
		UserID:      "user-1",
		TotalAmount: 1050,
	}
	if _, err := m.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(publisher.envelopes) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(publisher.envelopes))
	}
	if publisher.topics[0] != TopicOrderEvents {
		t.Fatalf("expected topic %s, got %s", TopicOrderEvents, publisher.topics[0])
	}

	envelope := publisher.envelopes[0]
	if envelope.EventID != "e-1" || envelope.EventType != domain.EventTypeOrderCreated {
		t.Fatalf("unexpected envelope meta: %+v", envelope)
	}

	var payload struct {
		OrderID     string `json:"order_id"`
		TotalAmount int64  `json:"total_amount"`
	}
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OrderID != "order-1" || payload.TotalAmount != 1050 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestForwarderRoutesUserEvents(t *testing.T) {
	t.Parallel()

	publisher := &stubPublisher{}
	m := mediator.New()
	NewForwarder(publisher).Register(m)

	event := domain.UserCreatedEvent{
		EventMeta: domain.NewEventMeta(time.Now()),
		UserID:    "user-1",
	}
	if _, err := m.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(publisher.topics) != 1 || publisher.topics[0] != TopicUserEvents {
		t.Fatalf("expected user events topic, got %v", publisher.topics)
	}
}

func TestForwarderPropagatesPublishError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	publisher := &stubPublisher{err: boom}
	m := mediator.New()
	NewForwarder(publisher).Register(m)

	event := domain.OrderStartedEvent{
		EventMeta: domain.NewEventMeta(time.Now()),
		OrderID:   "order-1",
	}
	if _, err := m.Publish(context.Background(), event); !errors.Is(err, boom) {
		t.Fatalf("expected publish error to propagate, got %v", err)
	}
}
