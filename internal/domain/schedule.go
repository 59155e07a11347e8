package domain

import "time"

// Schedule — рабочий день мастера. Слоты расписания образуют сетку рабочих
// часов; занятые времена определяются заказами, ссылающимися на слоты.
type Schedule struct {
	ID       string
	Day      time.Time
	MasterID string
}

// Slot — единица времени в расписании. Пара (schedule_id, time_start)
// уникальна: два заказа не могут занять одно и то же время.
type Slot struct {
	ID         string
	ScheduleID string
	TimeStart  SlotTime
}
