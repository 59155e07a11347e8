package domain

import (
	"context"
	"time"
)

// ServiceRepository описывает хранилище услуг и их расходников.
type ServiceRepository interface {
	// Create сохраняет новую услугу.
	Create(ctx context.Context, service Service) error
	// Get возвращает услугу по идентификатору или ErrServiceNotFound.
	Get(ctx context.Context, id string) (Service, error)
	// CreateConsumable сохраняет расходник услуги.
	CreateConsumable(ctx context.Context, consumable Consumable) error
	// ListConsumables возвращает расходники, привязанные к услуге.
	ListConsumables(ctx context.Context, serviceID string) ([]Consumable, error)
	// SaveConsumable обновляет остаток расходника.
	SaveConsumable(ctx context.Context, consumable Consumable) error
}

// MasterRepository описывает хранилище мастеров.
type MasterRepository interface {
	Create(ctx context.Context, master Master) error
	Get(ctx context.Context, id string) (Master, error)
}

// ScheduleRepository описывает хранилище расписаний и их слотов.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule Schedule) error
	// Get возвращает расписание по идентификатору или ErrScheduleNotFound.
	Get(ctx context.Context, id string) (Schedule, error)
	// CreateSlot вставляет слот. Нарушение уникальности (schedule_id, time_start)
	// транслируется в SlotOccupiedError — это основной страж от двойного бронирования.
	CreateSlot(ctx context.Context, slot Slot) error
	// GetSlot возвращает слот по идентификатору или ErrSlotNotFound.
	GetSlot(ctx context.Context, id string) (Slot, error)
	// UpdateSlotTime двигает слот на новое время; конфликт уникальности
	// также транслируется в SlotOccupiedError.
	UpdateSlotTime(ctx context.Context, slotID string, t SlotTime) error
	// DeleteSlot удаляет слот отменённого заказа, освобождая время.
	DeleteSlot(ctx context.Context, slotID string) error
	// OccupiedTimes возвращает времена слотов расписания, занятых активными заказами.
	OccupiedTimes(ctx context.Context, scheduleID string) ([]SlotTime, error)
}

// OrderRepository описывает хранилище заказов.
type OrderRepository interface {
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Order, error)
	// Save применяет обновления к существующему заказу.
	Save(ctx context.Context, order Order) error
}

// UserPointRepository описывает хранилище счетов баллов, один счёт на пользователя.
type UserPointRepository interface {
	Create(ctx context.Context, point UserPoint) error
	// GetByUser возвращает счёт пользователя или ErrUserPointNotFound.
	GetByUser(ctx context.Context, userID string) (UserPoint, error)
	Save(ctx context.Context, point UserPoint) error
}

// PromotionRepository описывает хранилище акций.
type PromotionRepository interface {
	Create(ctx context.Context, promotion Promotion) error
	// FindByCode возвращает акцию по уникальному коду или ErrPromotionNotFound.
	FindByCode(ctx context.Context, code string) (Promotion, error)
}

// TimelineEvent описывает запись в истории заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}

// TimelineRepository хранит историю жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}

// OutboxMessage — запись transactional outbox. Создаётся в одной транзакции
// с доменным изменением, один раз помечается обработанной, никогда не удаляется.
type OutboxMessage struct {
	ID          string
	EventType   string
	Payload     []byte
	OccurredAt  time.Time
	ProcessedAt *time.Time
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
// AppendFromEvent обязан вызываться внутри той же единицы работы, что и
// породившее событие доменное изменение, иначе атомарность теряется.
type OutboxRepository interface {
	AppendFromEvent(ctx context.Context, event Event) (OutboxMessage, error)
	// FetchPendingBatch выбирает необработанные записи в порядке появления,
	// захватывая их неблокирующей построчной блокировкой: занятые другим
	// обработчиком строки пропускаются, не дожидаясь освобождения.
	FetchPendingBatch(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkProcessed(ctx context.Context, id string) error
	Stats(ctx context.Context) (OutboxStats, error)
}

// UnitOfWork даёт доступ к репозиториям, привязанным к одной транзакции.
type UnitOfWork interface {
	Services() ServiceRepository
	Masters() MasterRepository
	Schedules() ScheduleRepository
	Orders() OrderRepository
	UserPoints() UserPointRepository
	Promotions() PromotionRepository
	Timeline() TimelineRepository
	Outbox() OutboxRepository
}

// TxManager исполняет функцию в границах одной транзакции: ошибка fn
// откатывает все изменения, включая записи outbox.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
