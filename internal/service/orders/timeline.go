package orders

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bms/internal/domain"
	"github.com/vladislavdragonenkov/bms/internal/mediator"
)

// TimelineProjector — подписчик событий заказа, ведущий историю жизненного
// цикла. Получает как живые события, так и повторные публикации из outbox;
// запись однозначна по (order_id, event type, occurred), поэтому повтор
// безопасен для читателей истории.
type TimelineProjector struct {
	txm    domain.TxManager
	logger *log.Entry
}

// NewTimelineProjector создаёт проектор истории заказов.
func NewTimelineProjector(txm domain.TxManager, logger *log.Entry) *TimelineProjector {
	if logger == nil {
		logger = log.WithField("component", "timeline")
	}
	return &TimelineProjector{txm: txm, logger: logger}
}

// Register подписывает проектор на события заказа.
func (p *TimelineProjector) Register(m *mediator.Mediator) {
	handler := mediator.EventHandlerFunc(p.handle)
	m.RegisterEvent(domain.EventTypeOrderCreated, handler)
	m.RegisterEvent(domain.EventTypeOrderRescheduled, handler)
	m.RegisterEvent(domain.EventTypeOrderCancelled, handler)
	m.RegisterEvent(domain.EventTypeOrderStarted, handler)
	m.RegisterEvent(domain.EventTypeOrderFinished, handler)
}

func (p *TimelineProjector) handle(ctx context.Context, event domain.Event) (any, error) {
	orderID, reason := describe(event)
	if orderID == "" {
		return nil, nil
	}

	err := p.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		return uow.Timeline().Append(ctx, domain.TimelineEvent{
			OrderID:  orderID,
			Type:     event.EventType(),
			Reason:   reason,
			Occurred: event.OccurredAt(),
		})
	})
	if err != nil {
		p.logger.WithError(err).WithField("order_id", orderID).Warn("failed to append timeline event")
		return nil, err
	}
	return nil, nil
}

func describe(event domain.Event) (orderID, reason string) {
	switch e := event.(type) {
	case domain.OrderCreatedEvent:
		return e.OrderID, "order placed for " + e.SlotTime
	case domain.OrderRescheduledEvent:
		return e.OrderID, "moved from " + e.OldTime + " to " + e.NewTime
	case domain.OrderCancelledEvent:
		return e.OrderID, "order cancelled"
	case domain.OrderStartedEvent:
		return e.OrderID, "work started"
	case domain.OrderFinishedEvent:
		return e.OrderID, "work finished"
	default:
		return "", ""
	}
}
