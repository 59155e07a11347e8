package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

func TestWithinTxCommit(t *testing.T) {
	t.Parallel()

	txm := NewTxManager()
	ctx := context.Background()

	err := txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		return uow.Orders().Create(ctx, domain.Order{ID: "order-1", UserID: "user-1", Status: domain.OrderStatusReceived})
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}

	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		order, err := uow.Orders().Get(ctx, "order-1")
		if err != nil {
			return err
		}
		if order.UserID != "user-1" {
			t.Fatalf("unexpected order: %+v", order)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read tx: %v", err)
	}
}

func TestWithinTxRollbackDiscardsOutboxAppend(t *testing.T) {
	t.Parallel()

	txm := NewTxManager()
	ctx := context.Background()
	boom := errors.New("boom")

	err := txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		if err := uow.Orders().Create(ctx, domain.Order{ID: "order-1"}); err != nil {
			return err
		}
		event := domain.OrderStartedEvent{
			EventMeta: domain.NewEventMeta(time.Now()),
			OrderID:   "order-1",
		}
		if _, err := uow.Outbox().AppendFromEvent(ctx, event); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		if _, err := uow.Orders().Get(ctx, "order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Fatalf("rolled back order must not exist, got %v", err)
		}
		pending, err := uow.Outbox().FetchPendingBatch(ctx, 10)
		if err != nil {
			return err
		}
		if len(pending) != 0 {
			t.Fatalf("rolled back outbox append must not be visible, got %d messages", len(pending))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify tx: %v", err)
	}
}

func TestCreateSlotUniqueness(t *testing.T) {
	t.Parallel()

	txm := NewTxManager()
	ctx := context.Background()

	err := txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		return uow.Schedules().CreateSlot(ctx, domain.Slot{ID: "slot-1", ScheduleID: "schedule-1", TimeStart: "12:00"})
	})
	if err != nil {
		t.Fatalf("first slot: %v", err)
	}

	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		return uow.Schedules().CreateSlot(ctx, domain.Slot{ID: "slot-2", ScheduleID: "schedule-1", TimeStart: "12:00"})
	})
	if !domain.IsSlotOccupied(err) {
		t.Fatalf("expected SlotOccupiedError, got %v", err)
	}

	// Другое расписание и другое время остаются свободными.
	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		if err := uow.Schedules().CreateSlot(ctx, domain.Slot{ID: "slot-3", ScheduleID: "schedule-2", TimeStart: "12:00"}); err != nil {
			return err
		}
		return uow.Schedules().CreateSlot(ctx, domain.Slot{ID: "slot-4", ScheduleID: "schedule-1", TimeStart: "13:00"})
	})
	if err != nil {
		t.Fatalf("non-conflicting slots: %v", err)
	}
}

func TestConcurrentCreateSlotExactlyOneWins(t *testing.T) {
	t.Parallel()

	txm := NewTxManager()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
				return uow.Schedules().CreateSlot(ctx, domain.Slot{
					ID:         "slot-" + string(rune('a'+i)),
					ScheduleID: "schedule-1",
					TimeStart:  "12:00",
				})
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case domain.IsSlotOccupied(err):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestUpdateAndDeleteSlot(t *testing.T) {
	t.Parallel()

	txm := NewTxManager()
	ctx := context.Background()

	err := txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		if err := uow.Schedules().CreateSlot(ctx, domain.Slot{ID: "slot-1", ScheduleID: "schedule-1", TimeStart: "12:00"}); err != nil {
			return err
		}
		return uow.Schedules().CreateSlot(ctx, domain.Slot{ID: "slot-2", ScheduleID: "schedule-1", TimeStart: "13:00"})
	})
	if err != nil {
		t.Fatalf("seed slots: %v", err)
	}

	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		return uow.Schedules().UpdateSlotTime(ctx, "slot-1", "13:00")
	})
	if !domain.IsSlotOccupied(err) {
		t.Fatalf("expected conflict moving onto busy time, got %v", err)
	}

	// Перенос на собственное время не конфликт.
	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		return uow.Schedules().UpdateSlotTime(ctx, "slot-1", "12:00")
	})
	if err != nil {
		t.Fatalf("self move: %v", err)
	}

	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		if err := uow.Schedules().DeleteSlot(ctx, "slot-2"); err != nil {
			return err
		}
		// Освобождённое время можно занять снова.
		return uow.Schedules().CreateSlot(ctx, domain.Slot{ID: "slot-3", ScheduleID: "schedule-1", TimeStart: "13:00"})
	})
	if err != nil {
		t.Fatalf("delete and rebook: %v", err)
	}
}

func TestOutboxPendingOrderAndMarkProcessed(t *testing.T) {
	t.Parallel()

	txm := NewTxManager()
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	err := txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		for i, id := range []string{"e-2", "e-1", "e-3"} {
			event := domain.OrderStartedEvent{
				EventMeta: domain.EventMeta{ID: id, Occurred: base.Add(time.Duration(2-i) * time.Minute)},
				OrderID:   "order-1",
			}
			if _, err := uow.Outbox().AppendFromEvent(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed outbox: %v", err)
	}

	err = txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		pending, err := uow.Outbox().FetchPendingBatch(ctx, 10)
		if err != nil {
			return err
		}
		if len(pending) != 3 {
			t.Fatalf("expected 3 pending, got %d", len(pending))
		}
		// Порядок по occurred_at: e-3 (+0m), e-1 (+1m), e-2 (+2m).
		if pending[0].ID != "e-3" || pending[1].ID != "e-1" || pending[2].ID != "e-2" {
			t.Fatalf("unexpected order: %s %s %s", pending[0].ID, pending[1].ID, pending[2].ID)
		}

		if err := uow.Outbox().MarkProcessed(ctx, "e-3"); err != nil {
			return err
		}
		if err := uow.Outbox().MarkProcessed(ctx, "e-3"); !errors.Is(err, domain.ErrOutboxMessageNotFound) {
			t.Fatalf("second mark must fail, got %v", err)
		}

		stats, err := uow.Outbox().Stats(ctx)
		if err != nil {
			return err
		}
		if stats.PendingCount != 2 {
			t.Fatalf("expected 2 pending after mark, got %d", stats.PendingCount)
		}
		if !stats.OldestPendingAt.Equal(base.Add(time.Minute)) {
			t.Fatalf("unexpected oldest pending: %v", stats.OldestPendingAt)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify tx: %v", err)
	}
}
