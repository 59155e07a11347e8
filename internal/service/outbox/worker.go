// Package outbox реализует обработчик transactional outbox: периодически
// выбирает необработанные события и доставляет их подписчикам через mediator.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bms/internal/domain"
	"github.com/vladislavdragonenkov/bms/internal/mediator"
)

const (
	defaultPollInterval   = 1 * time.Second
	defaultBatchSize      = 100
	defaultPublishTimeout = 5 * time.Second
)

var (
	outboxProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bms_outbox_processed_total",
		Help: "Total number of outbox messages handled grouped by result.",
	}, []string{"result"})
	outboxPendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bms_outbox_pending_records",
		Help: "Current number of pending records in transactional outbox.",
	})
	outboxOldestPendingAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bms_outbox_oldest_pending_age_seconds",
		Help: "Age in seconds of the oldest pending outbox record.",
	})
)

// EventBus — потребитель событий outbox; обычно это mediator.
type EventBus interface {
	Publish(ctx context.Context, events ...domain.Event) ([]any, error)
}

// WorkerOptions задаёт параметры outbox worker.
type WorkerOptions struct {
	Logger         *log.Entry
	PollInterval   time.Duration
	BatchSize      int
	PublishTimeout time.Duration
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithPollInterval задаёт частоту опроса outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.PollInterval = interval
	}
}

// WithBatchSize задаёт размер батча из outbox.
func WithBatchSize(batchSize int) Option {
	return func(opts *WorkerOptions) {
		opts.BatchSize = batchSize
	}
}

// WithPublishTimeout ограничивает время доставки одного события подписчикам.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.PublishTimeout = timeout
	}
}

// Worker доставляет pending-сообщения outbox подписчикам mediator.
// Сообщение помечается обработанным отдельной транзакцией после успешной
// доставки, поэтому при падении процесса между доставкой и пометкой оно
// будет доставлено повторно: подписчики должны быть идемпотентны по event_id.
type Worker struct {
	txm            domain.TxManager
	registry       *mediator.Registry
	bus            EventBus
	logger         *log.Entry
	pollInterval   time.Duration
	batchSize      int
	publishTimeout time.Duration
}

// NewWorker создаёт outbox worker.
func NewWorker(txm domain.TxManager, registry *mediator.Registry, bus EventBus, options ...Option) *Worker {
	opts := WorkerOptions{
		PollInterval:   defaultPollInterval,
		BatchSize:      defaultBatchSize,
		PublishTimeout: defaultPublishTimeout,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "outbox-worker")
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}

	return &Worker{
		txm:            txm,
		registry:       registry,
		bus:            bus,
		logger:         logger,
		pollInterval:   opts.PollInterval,
		batchSize:      opts.BatchSize,
		publishTimeout: opts.PublishTimeout,
	}
}

// Run запускает периодический polling outbox до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.txm == nil || w.bus == nil {
		w.logger.Warn("outbox worker is disabled: tx manager or event bus is nil")
		return
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один polling-цикл: выбирает батч pending-сообщений,
// доставляет каждое подписчикам и помечает обработанным. Ошибка или таймаут
// доставки оставляют сообщение pending до следующего цикла.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	var messages []domain.OutboxMessage
	err := w.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		repo := uow.Outbox()
		w.refreshBacklogMetrics(ctx, repo)

		var err error
		messages, err = repo.FetchPendingBatch(ctx, w.batchSize)
		return err
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.WithError(err).Warn("failed to fetch pending outbox batch")
		}
		return
	}

	for _, msg := range messages {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, msg)
	}
}

func (w *Worker) deliver(ctx context.Context, msg domain.OutboxMessage) {
	event, err := w.registry.Decode(msg.EventType, msg.Payload)
	if err != nil {
		// Неизвестный тип события не должен остановить очередь: сообщение
		// пропускается и останется pending до появления декодера.
		w.logger.WithError(err).WithFields(log.Fields{
			"outbox_id":  msg.ID,
			"event_type": msg.EventType,
		}).Error("skipping undecodable outbox message")
		outboxProcessed.WithLabelValues("poison").Inc()
		return
	}

	if err := w.publishBounded(ctx, event); err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"outbox_id":  msg.ID,
			"event_type": msg.EventType,
		}).Warn("outbox event delivery failed, message stays pending")
		outboxProcessed.WithLabelValues("error").Inc()
		return
	}

	err = w.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		return uow.Outbox().MarkProcessed(ctx, msg.ID)
	})
	switch {
	case err == nil:
		outboxProcessed.WithLabelValues("processed").Inc()
	case errors.Is(err, domain.ErrOutboxMessageNotFound):
		// Параллельный обработчик успел пометить сообщение первым.
		outboxProcessed.WithLabelValues("duplicate").Inc()
	default:
		w.logger.WithError(err).WithField("outbox_id", msg.ID).Warn("failed to mark outbox message processed")
	}
}

func (w *Worker) publishBounded(ctx context.Context, event domain.Event) error {
	pubCtx, cancel := context.WithTimeout(ctx, w.publishTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := w.bus.Publish(pubCtx, event)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-pubCtx.Done():
		return fmt.Errorf("publish %s: %w", event.EventType(), pubCtx.Err())
	}
}

func (w *Worker) refreshBacklogMetrics(ctx context.Context, repo domain.OutboxRepository) {
	stats, err := repo.Stats(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}

	outboxPendingRecords.Set(float64(stats.PendingCount))
	if stats.PendingCount == 0 || stats.OldestPendingAt.IsZero() {
		outboxOldestPendingAge.Set(0)
		return
	}

	age := time.Since(stats.OldestPendingAt).Seconds()
	if age < 0 {
		age = 0
	}
	outboxOldestPendingAge.Set(age)
}
