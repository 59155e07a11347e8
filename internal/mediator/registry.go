package mediator

import (
	"fmt"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

// Registry сопоставляет тег типа события с функцией восстановления события из
// payload записи outbox. Явная карта вместо рефлексии: незнакомый тег — это
// проблема данных, а не сбой среды выполнения. Заполняется на старте процесса,
// дальше только читается.
type Registry struct {
	decoders map[string]domain.DecodeFunc
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]domain.DecodeFunc)}
}

// Register связывает тег типа события с декодером.
func (r *Registry) Register(eventType string, decode domain.DecodeFunc) {
	r.decoders[eventType] = decode
}

// Resolve возвращает декодер для тега, если тот зарегистрирован.
func (r *Registry) Resolve(eventType string) (domain.DecodeFunc, bool) {
	decode, ok := r.decoders[eventType]
	return decode, ok
}

// Decode восстанавливает событие из записи outbox. Незарегистрированный тег
// возвращает ErrUnknownEventType: такая запись считается poison message.
func (r *Registry) Decode(eventType string, payload []byte) (domain.Event, error) {
	decode, ok := r.decoders[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEventType, eventType)
	}
	return decode(payload)
}

// DefaultRegistry возвращает реестр со всеми событиями домена.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(domain.EventTypeOrderCreated, domain.DecodeOrderCreated)
	r.Register(domain.EventTypeOrderCancelled, domain.DecodeOrderCancelled)
	r.Register(domain.EventTypeOrderRescheduled, domain.DecodeOrderRescheduled)
	r.Register(domain.EventTypeOrderStarted, domain.DecodeOrderStarted)
	r.Register(domain.EventTypeOrderFinished, domain.DecodeOrderFinished)
	r.Register(domain.EventTypeUserCreated, domain.DecodeUserCreated)
	return r
}
