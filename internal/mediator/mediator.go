// Package mediator реализует внутрипроцессную шину приложения: команды
// направляются зарегистрированным обработчикам, события — подписчикам.
// Карты обработчиков заполняются один раз при сборке приложения и после
// этого только читаются, поэтому синхронизация не требуется.
package mediator

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

// Command — запрос на изменение состояния, несущий свой тип для диспетчеризации.
type Command interface {
	CommandType() string
}

// CommandHandler обрабатывает команду и возвращает результат.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (any, error)
}

// CommandHandlerFunc адаптирует функцию под CommandHandler.
type CommandHandlerFunc func(ctx context.Context, cmd Command) (any, error)

// Handle вызывает функцию.
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (any, error) {
	return f(ctx, cmd)
}

// EventHandler реагирует на опубликованное событие.
type EventHandler interface {
	Handle(ctx context.Context, event domain.Event) (any, error)
}

// EventHandlerFunc адаптирует функцию под EventHandler.
type EventHandlerFunc func(ctx context.Context, event domain.Event) (any, error)

// Handle вызывает функцию.
func (f EventHandlerFunc) Handle(ctx context.Context, event domain.Event) (any, error) {
	return f(ctx, event)
}

// NoHandlerRegisteredError означает, что для типа команды не нашлось обработчика.
type NoHandlerRegisteredError struct {
	CommandType string
}

func (e *NoHandlerRegisteredError) Error() string {
	return fmt.Sprintf("no handler registered for command %s", e.CommandType)
}

// Mediator хранит две независимые карты: тип команды -> обработчики,
// тип события -> подписчики.
type Mediator struct {
	commands map[string][]CommandHandler
	events   map[string][]EventHandler
}

// New создаёт пустой Mediator.
func New() *Mediator {
	return &Mediator{
		commands: make(map[string][]CommandHandler),
		events:   make(map[string][]EventHandler),
	}
}

// RegisterCommand добавляет обработчики команды. Вызывается только при
// сборке приложения, до того как Mediator станет общим для горутин.
func (m *Mediator) RegisterCommand(commandType string, handlers ...CommandHandler) {
	m.commands[commandType] = append(m.commands[commandType], handlers...)
}

// RegisterEvent добавляет подписчиков события. Ограничения те же, что и
// у RegisterCommand.
func (m *Mediator) RegisterEvent(eventType string, handlers ...EventHandler) {
	m.events[eventType] = append(m.events[eventType], handlers...)
}

// HandleCommand вызывает обработчики команды в порядке регистрации и
// возвращает их результаты. Отсутствие обработчиков — ошибка; ошибка любого
// обработчика прерывает обработку и поднимается вызывающему.
func (m *Mediator) HandleCommand(ctx context.Context, cmd Command) ([]any, error) {
	handlers, ok := m.commands[cmd.CommandType()]
	if !ok || len(handlers) == 0 {
		return nil, &NoHandlerRegisteredError{CommandType: cmd.CommandType()}
	}

	results := make([]any, 0, len(handlers))
	for _, handler := range handlers {
		result, err := handler.Handle(ctx, cmd)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Publish доставляет события подписчикам в порядке регистрации. События без
// подписчиков принимаются молча: для событий это осознанный контракт,
// в отличие от команд. Mediator не различает живые события и повторную
// публикацию из outbox.
func (m *Mediator) Publish(ctx context.Context, events ...domain.Event) ([]any, error) {
	var results []any
	for _, event := range events {
		for _, handler := range m.events[event.EventType()] {
			result, err := handler.Handle(ctx, event)
			if err != nil {
				return results, fmt.Errorf("handle event %s: %w", event.EventType(), err)
			}
			results = append(results, result)
		}
	}
	return results, nil
}
