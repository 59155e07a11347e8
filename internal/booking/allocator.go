// Package booking содержит чистую доменную логику бронирования: сетку слотов,
// расчёт стоимости и операции агрегата заказа. Пакет не обращается к
// хранилищам: вызывающий код передаёт согласованный снимок состояния и сам
// применяет вычисленные изменения в границах транзакции.
package booking

import (
	"fmt"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

// Рабочее окно дня: почасовые слоты с началом от OpenHour включительно
// до CloseHour исключительно.
const (
	OpenHour  = 10
	CloseHour = 20
)

// Grid возвращает полную сетку рабочих часов в порядке возрастания времени.
func Grid() []domain.SlotTime {
	grid := make([]domain.SlotTime, 0, CloseHour-OpenHour)
	for h := OpenHour; h < CloseHour; h++ {
		grid = append(grid, domain.SlotTime(fmt.Sprintf("%02d:00", h)))
	}
	return grid
}

// FreeSlots возвращает свободные времена сетки: полную сетку за вычетом
// занятых. Порядок стабилен и возрастает; пустой занятый набор даёт всю сетку.
func FreeSlots(occupied []domain.SlotTime) []domain.SlotTime {
	taken := make(map[domain.SlotTime]struct{}, len(occupied))
	for _, t := range occupied {
		taken[t] = struct{}{}
	}

	free := make([]domain.SlotTime, 0, CloseHour-OpenHour)
	for _, t := range Grid() {
		if _, ok := taken[t]; ok {
			continue
		}
		free = append(free, t)
	}
	return free
}

// IsFree сообщает, отсутствует ли время кандидата среди занятых. Это ранняя
// проверка: окончательно от гонки двух размещений защищает уникальный
// индекс (schedule_id, time_start) в хранилище.
func IsFree(candidate domain.SlotTime, occupied []domain.SlotTime) bool {
	for _, t := range occupied {
		if t == candidate {
			return false
		}
	}
	return true
}
