package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics содержит метрики командных операций бронирования.
type BookingMetrics struct {
	// Счётчики операций
	ordersPlaced      prometheus.Counter
	ordersRescheduled prometheus.Counter
	ordersCancelled   prometheus.Counter
	ordersFinished    prometheus.Counter
	slotConflicts     prometheus.Counter

	// Счётчики баллов
	pointsSpent    prometheus.Counter
	pointsReturned prometheus.Counter

	// Гистограмма времени обработки команд
	commandDuration *prometheus.HistogramVec
}

// NewBookingMetrics создаёт метрики в default-регистраторе процесса.
func NewBookingMetrics() *BookingMetrics {
	return NewBookingMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewBookingMetricsWithRegisterer создаёт метрики в заданном регистраторе (для тестов).
func NewBookingMetricsWithRegisterer(registerer prometheus.Registerer) *BookingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &BookingMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bms_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		ordersRescheduled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bms_orders_rescheduled_total",
			Help: "Total number of orders moved to another slot",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bms_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		ordersFinished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bms_orders_finished_total",
			Help: "Total number of orders finished",
		}),
		slotConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bms_slot_conflicts_total",
			Help: "Total number of placements rejected because the slot was occupied",
		}),
		pointsSpent: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bms_points_spent_total",
			Help: "Total loyalty points spent on orders",
		}),
		pointsReturned: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bms_points_returned_total",
			Help: "Total loyalty points returned on cancellations",
		}),
		commandDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "bms_command_duration_seconds",
			Help:    "Duration of booking command handling in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"command"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик размещённых заказов.
func (m *BookingMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderRescheduled увеличивает счётчик перенесённых заказов.
func (m *BookingMetrics) RecordOrderRescheduled() {
	m.ordersRescheduled.Inc()
}

// RecordOrderCancelled увеличивает счётчик отменённых заказов.
func (m *BookingMetrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
}

// RecordOrderFinished увеличивает счётчик завершённых заказов.
func (m *BookingMetrics) RecordOrderFinished() {
	m.ordersFinished.Inc()
}

// RecordSlotConflict увеличивает счётчик конфликтов занятых слотов.
func (m *BookingMetrics) RecordSlotConflict() {
	m.slotConflicts.Inc()
}

// RecordPointsSpent учитывает списанные баллы.
func (m *BookingMetrics) RecordPointsSpent(n int64) {
	if n > 0 {
		m.pointsSpent.Add(float64(n))
	}
}

// RecordPointsReturned учитывает возвращённые баллы.
func (m *BookingMetrics) RecordPointsReturned(n int64) {
	if n > 0 {
		m.pointsReturned.Add(float64(n))
	}
}

// RecordCommandDuration записывает время обработки команды.
func (m *BookingMetrics) RecordCommandDuration(command string, duration time.Duration) {
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}
