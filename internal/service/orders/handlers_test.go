package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bms/internal/booking"
	"github.com/vladislavdragonenkov/bms/internal/domain"
	"github.com/vladislavdragonenkov/bms/internal/mediator"
	"github.com/vladislavdragonenkov/bms/internal/storage/memory"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestBus(t *testing.T) (*mediator.Mediator, *memory.TxManager) {
	t.Helper()

	txm := memory.NewTxManager()
	m := mediator.New()
	NewHandlers(txm, nil, nil).WithClock(func() time.Time { return fixedNow }).Register(m)

	err := txm.WithinTx(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		if err := uow.Services().Create(ctx, domain.Service{ID: "service-1", Name: "Стрижка", Price: 1500}); err != nil {
			return err
		}
		if err := uow.Services().CreateConsumable(ctx, domain.Consumable{
			ID: "c-1", ServiceID: "service-1", Name: "Шампунь", Count: 10, PerOrderUse: 2,
		}); err != nil {
			return err
		}
		if err := uow.Masters().Create(ctx, domain.Master{ID: "master-1", UserID: "master-user", ServiceIDs: []string{"service-1"}}); err != nil {
			return err
		}
		if err := uow.Schedules().Create(ctx, domain.Schedule{
			ID:       "schedule-1",
			Day:      time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			MasterID: "master-1",
		}); err != nil {
			return err
		}
		if err := uow.UserPoints().Create(ctx, domain.UserPoint{ID: "p-1", UserID: "user-1", Count: 1000}); err != nil {
			return err
		}
		return uow.Promotions().Create(ctx, domain.Promotion{
			ID:         "promo-1",
			Code:       "SPRING",
			Percentage: 20,
			Active:     true,
			DayStart:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			DayEnd:     time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			ServiceIDs: []string{"service-1"},
		})
	})
	if err != nil {
		t.Fatalf("seed storage: %v", err)
	}

	return m, txm
}

func placeTestOrder(t *testing.T, m *mediator.Mediator, cmd PlaceOrderCommand) PlaceOrderReply {
	t.Helper()

	results, err := m.HandleCommand(context.Background(), cmd)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	reply, ok := results[0].(PlaceOrderReply)
	if !ok {
		t.Fatalf("expected PlaceOrderReply, got %T", results[0])
	}
	return reply
}

func TestPlaceOrderCommand(t *testing.T) {
	t.Parallel()

	m, txm := newTestBus(t)

	reply := placeTestOrder(t, m, PlaceOrderCommand{
		UserID:     "user-1",
		ScheduleID: "schedule-1",
		ServiceID:  "service-1",
		Time:       "12:00",
		PromoCode:  "SPRING",
		PointSpend: 150,
	})

	if reply.TotalAmount != 1050 || reply.PointsUsed != 150 || reply.PromotionSale != 300 {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	err := txm.WithinTx(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		order, err := uow.Orders().Get(ctx, reply.OrderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusReceived {
			t.Fatalf("expected received order, got %s", order.Status)
		}

		point, err := uow.UserPoints().GetByUser(ctx, "user-1")
		if err != nil {
			return err
		}
		if got := point.Count.Int64(); got != 850 {
			t.Fatalf("expected balance 850, got %d", got)
		}

		consumables, err := uow.Services().ListConsumables(ctx, "service-1")
		if err != nil {
			return err
		}
		if got := consumables[0].Count.Int64(); got != 8 {
			t.Fatalf("expected consumable remainder 8, got %d", got)
		}

		pending, err := uow.Outbox().FetchPendingBatch(ctx, 10)
		if err != nil {
			return err
		}
		if len(pending) != 1 || pending[0].EventType != domain.EventTypeOrderCreated {
			t.Fatalf("expected one order created event in outbox, got %+v", pending)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify tx: %v", err)
	}
}

func TestPlaceOrderCommandSlotConflict(t *testing.T) {
	t.Parallel()

	m, txm := newTestBus(t)

	placeTestOrder(t, m, PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "12:00",
	})

	_, err := m.HandleCommand(context.Background(), PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "12:00",
	})
	if !domain.IsSlotOccupied(err) {
		t.Fatalf("expected SlotOccupiedError, got %v", err)
	}

	// Проигравшая заявка не оставляет следов: ни заказа, ни списаний.
	err = txm.WithinTx(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		orders, err := uow.Orders().ListByUser(ctx, "user-1", 10)
		if err != nil {
			return err
		}
		if len(orders) != 1 {
			t.Fatalf("expected single order, got %d", len(orders))
		}
		pending, err := uow.Outbox().FetchPendingBatch(ctx, 10)
		if err != nil {
			return err
		}
		if len(pending) != 1 {
			t.Fatalf("expected single outbox message, got %d", len(pending))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify tx: %v", err)
	}
}

func TestPlaceOrderCommandInvalidTime(t *testing.T) {
	t.Parallel()

	m, _ := newTestBus(t)

	_, err := m.HandleCommand(context.Background(), PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "25:00",
	})
	if !errors.Is(err, domain.ErrSlotTimeFormat) {
		t.Fatalf("expected ErrSlotTimeFormat, got %v", err)
	}
}

func TestRescheduleOrderCommand(t *testing.T) {
	t.Parallel()

	m, txm := newTestBus(t)

	reply := placeTestOrder(t, m, PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "12:00",
	})

	if _, err := m.HandleCommand(context.Background(), RescheduleOrderCommand{OrderID: reply.OrderID, NewTime: "14:00"}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	err := txm.WithinTx(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		slot, err := uow.Schedules().GetSlot(ctx, reply.SlotID)
		if err != nil {
			return err
		}
		if slot.TimeStart != "14:00" {
			t.Fatalf("expected slot moved to 14:00, got %s", slot.TimeStart)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify tx: %v", err)
	}
}

func TestCancelOrderCommandFreesSlotAndRefunds(t *testing.T) {
	t.Parallel()

	m, txm := newTestBus(t)

	reply := placeTestOrder(t, m, PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "12:00", PointSpend: 150,
	})

	if _, err := m.HandleCommand(context.Background(), CancelOrderCommand{OrderID: reply.OrderID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	err := txm.WithinTx(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		order, err := uow.Orders().Get(ctx, reply.OrderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderStatusCancelled {
			t.Fatalf("expected cancelled, got %s", order.Status)
		}

		point, err := uow.UserPoints().GetByUser(ctx, "user-1")
		if err != nil {
			return err
		}
		if got := point.Count.Int64(); got != 1000 {
			t.Fatalf("expected refunded balance 1000, got %d", got)
		}

		consumables, err := uow.Services().ListConsumables(ctx, "service-1")
		if err != nil {
			return err
		}
		if got := consumables[0].Count.Int64(); got != 10 {
			t.Fatalf("expected consumable restored to 10, got %d", got)
		}

		if _, err := uow.Schedules().GetSlot(ctx, reply.SlotID); !errors.Is(err, domain.ErrSlotNotFound) {
			t.Fatalf("slot of cancelled order must be removed, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify tx: %v", err)
	}

	// Освобождённое время можно забронировать снова.
	placeTestOrder(t, m, PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "12:00",
	})
}

func TestStartAndFinishOrderCommands(t *testing.T) {
	t.Parallel()

	m, txm := newTestBus(t)

	reply := placeTestOrder(t, m, PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "12:00",
	})

	if _, err := m.HandleCommand(context.Background(), StartOrderCommand{OrderID: reply.OrderID}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.HandleCommand(context.Background(), FinishOrderCommand{OrderID: reply.OrderID}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Завершённый заказ больше не меняет статус.
	if _, err := m.HandleCommand(context.Background(), StartOrderCommand{OrderID: reply.OrderID}); err == nil {
		t.Fatal("expected error starting finished order")
	}

	err := txm.WithinTx(context.Background(), func(ctx context.Context, uow domain.UnitOfWork) error {
		pending, err := uow.Outbox().FetchPendingBatch(ctx, 10)
		if err != nil {
			return err
		}
		// created + started + finished
		if len(pending) != 3 {
			t.Fatalf("expected 3 outbox messages, got %d", len(pending))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify tx: %v", err)
	}
}

func TestRegisterUserCommand(t *testing.T) {
	t.Parallel()

	m, _ := newTestBus(t)

	if _, err := m.HandleCommand(context.Background(), RegisterUserCommand{UserID: "user-2"}); err != nil {
		t.Fatalf("register user: %v", err)
	}

	_, err := m.HandleCommand(context.Background(), RegisterUserCommand{UserID: "user-2"})
	if !errors.Is(err, domain.ErrUserPointExists) {
		t.Fatalf("expected ErrUserPointExists on repeat, got %v", err)
	}
}

func TestFreeSlotsQuery(t *testing.T) {
	t.Parallel()

	m, txm := newTestBus(t)
	h := NewHandlers(txm, nil, nil).WithClock(func() time.Time { return fixedNow })

	placeTestOrder(t, m, PlaceOrderCommand{
		UserID: "user-1", ScheduleID: "schedule-1", ServiceID: "service-1", Time: "12:00",
	})

	free, err := h.FreeSlots(context.Background(), "schedule-1")
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != len(booking.Grid())-1 {
		t.Fatalf("expected %d free slots, got %d", len(booking.Grid())-1, len(free))
	}
	for _, f := range free {
		if f == "12:00" {
			t.Fatal("booked time leaked into free slots")
		}
	}

	if _, err := h.FreeSlots(context.Background(), "missing"); !errors.Is(err, domain.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}
