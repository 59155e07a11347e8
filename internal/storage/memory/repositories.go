package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type serviceRepository struct {
	st *state
}

func (r *serviceRepository) Create(_ context.Context, service domain.Service) error {
	r.st.services[service.ID] = service
	return nil
}

func (r *serviceRepository) Get(_ context.Context, id string) (domain.Service, error) {
	service, ok := r.st.services[id]
	if !ok {
		return domain.Service{}, domain.ErrServiceNotFound
	}
	return service, nil
}

func (r *serviceRepository) CreateConsumable(_ context.Context, consumable domain.Consumable) error {
	r.st.consumables[consumable.ID] = consumable
	return nil
}

func (r *serviceRepository) ListConsumables(_ context.Context, serviceID string) ([]domain.Consumable, error) {
	var out []domain.Consumable
	for _, c := range r.st.consumables {
		if c.ServiceID == serviceID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *serviceRepository) SaveConsumable(_ context.Context, consumable domain.Consumable) error {
	r.st.consumables[consumable.ID] = consumable
	return nil
}

type masterRepository struct {
	st *state
}

func (r *masterRepository) Create(_ context.Context, master domain.Master) error {
	r.st.masters[master.ID] = master
	return nil
}

func (r *masterRepository) Get(_ context.Context, id string) (domain.Master, error) {
	master, ok := r.st.masters[id]
	if !ok {
		return domain.Master{}, domain.ErrMasterNotFound
	}
	return master, nil
}

type scheduleRepository struct {
	st *state
}

func (r *scheduleRepository) Create(_ context.Context, schedule domain.Schedule) error {
	r.st.schedules[schedule.ID] = schedule
	return nil
}

func (r *scheduleRepository) Get(_ context.Context, id string) (domain.Schedule, error) {
	schedule, ok := r.st.schedules[id]
	if !ok {
		return domain.Schedule{}, domain.ErrScheduleNotFound
	}
	return schedule, nil
}

func (r *scheduleRepository) CreateSlot(_ context.Context, slot domain.Slot) error {
	key := slotTimeKey(slot.ScheduleID, slot.TimeStart)
	if _, busy := r.st.slotTimes[key]; busy {
		return &domain.SlotOccupiedError{ScheduleID: slot.ScheduleID, Time: slot.TimeStart}
	}
	r.st.slots[slot.ID] = slot
	r.st.slotTimes[key] = slot.ID
	return nil
}

func (r *scheduleRepository) GetSlot(_ context.Context, id string) (domain.Slot, error) {
	slot, ok := r.st.slots[id]
	if !ok {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	return slot, nil
}

func (r *scheduleRepository) UpdateSlotTime(_ context.Context, slotID string, t domain.SlotTime) error {
	slot, ok := r.st.slots[slotID]
	if !ok {
		return domain.ErrSlotNotFound
	}

	key := slotTimeKey(slot.ScheduleID, t)
	if holder, busy := r.st.slotTimes[key]; busy && holder != slotID {
		return &domain.SlotOccupiedError{ScheduleID: slot.ScheduleID, Time: t}
	}

	delete(r.st.slotTimes, slotTimeKey(slot.ScheduleID, slot.TimeStart))
	slot.TimeStart = t
	r.st.slots[slotID] = slot
	r.st.slotTimes[key] = slotID
	return nil
}

func (r *scheduleRepository) DeleteSlot(_ context.Context, slotID string) error {
	slot, ok := r.st.slots[slotID]
	if !ok {
		return domain.ErrSlotNotFound
	}
	delete(r.st.slotTimes, slotTimeKey(slot.ScheduleID, slot.TimeStart))
	delete(r.st.slots, slotID)
	return nil
}

func (r *scheduleRepository) OccupiedTimes(_ context.Context, scheduleID string) ([]domain.SlotTime, error) {
	var out []domain.SlotTime
	for _, slot := range r.st.slots {
		if slot.ScheduleID == scheduleID {
			out = append(out, slot.TimeStart)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

type orderRepository struct {
	st *state
}

func (r *orderRepository) Create(_ context.Context, order domain.Order) error {
	r.st.orders[order.ID] = order
	return nil
}

func (r *orderRepository) Get(_ context.Context, id string) (domain.Order, error) {
	order, ok := r.st.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *orderRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.Order, error) {
	var out []domain.Order
	for _, order := range r.st.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateAdd.After(out[j].DateAdd) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *orderRepository) Save(_ context.Context, order domain.Order) error {
	if _, ok := r.st.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.st.orders[order.ID] = order
	return nil
}

type userPointRepository struct {
	st *state
}

func (r *userPointRepository) Create(_ context.Context, point domain.UserPoint) error {
	if _, ok := r.st.userPoints[point.UserID]; ok {
		return domain.ErrUserPointExists
	}
	r.st.userPoints[point.UserID] = point
	return nil
}

func (r *userPointRepository) GetByUser(_ context.Context, userID string) (domain.UserPoint, error) {
	point, ok := r.st.userPoints[userID]
	if !ok {
		return domain.UserPoint{}, domain.ErrUserPointNotFound
	}
	return point, nil
}

func (r *userPointRepository) Save(_ context.Context, point domain.UserPoint) error {
	if _, ok := r.st.userPoints[point.UserID]; !ok {
		return domain.ErrUserPointNotFound
	}
	r.st.userPoints[point.UserID] = point
	return nil
}

type promotionRepository struct {
	st *state
}

func (r *promotionRepository) Create(_ context.Context, promotion domain.Promotion) error {
	r.st.promotions[promotion.Code.String()] = promotion
	return nil
}

func (r *promotionRepository) FindByCode(_ context.Context, code string) (domain.Promotion, error) {
	promotion, ok := r.st.promotions[code]
	if !ok {
		return domain.Promotion{}, domain.ErrPromotionNotFound
	}
	return promotion, nil
}

type timelineRepository struct {
	st *state
}

func (r *timelineRepository) Append(_ context.Context, event domain.TimelineEvent) error {
	r.st.timeline = append(r.st.timeline, event)
	return nil
}

func (r *timelineRepository) List(_ context.Context, orderID string) ([]domain.TimelineEvent, error) {
	var out []domain.TimelineEvent
	for _, e := range r.st.timeline {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}
