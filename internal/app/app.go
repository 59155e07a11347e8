// Package app собирает сервис бронирования: хранилище, mediator с
// обработчиками команд и подписчиками событий, outbox worker и HTTP-сервер
// метрик и health-проверок.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/bms/internal/health"
	"github.com/vladislavdragonenkov/bms/internal/mediator"
	"github.com/vladislavdragonenkov/bms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bms/internal/metrics"
	"github.com/vladislavdragonenkov/bms/internal/service/orders"
	"github.com/vladislavdragonenkov/bms/internal/service/outbox"
	"github.com/vladislavdragonenkov/bms/internal/version"
)

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	healthHandler := healthcheck.NewHandler(version.GetVersion())

	txm, store, err := initStorage(ctx, cfg, logger, healthHandler)
	if err != nil {
		return err
	}
	defer func() {
		if store != nil {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}
	}()

	kafkaProducer := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	// Вся маршрутизация регистрируется до того, как mediator станет общим:
	// после старта воркера его таблицы только читаются.
	m := mediator.New()
	bookingMetrics := metrics.NewBookingMetrics()
	orders.NewHandlers(txm, bookingMetrics, logger.WithField("layer", "commands")).Register(m)
	orders.NewTimelineProjector(txm, logger.WithField("layer", "timeline")).Register(m)
	if kafkaProducer != nil {
		kafka.NewForwarder(kafkaProducer).Register(m)
	}

	worker := outbox.NewWorker(txm, mediator.DefaultRegistry(), m,
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithPublishTimeout(cfg.OutboxPublishTimeout),
	)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем сервис")

	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		logger.Warn("outbox worker не остановился за таймаут")
	}
	shutdownHTTP(metricsSrv, logger)

	return ctx.Err()
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}

// initKafkaProducer создаёт producer, если указаны брокеры. Ошибка подключения
// не фатальна: сервис продолжит работу без пересылки во внешний брокер.
func initKafkaProducer(brokers string, logger *log.Entry) *kafka.Producer {
	if brokers == "" {
		return nil
	}

	brokerList := strings.Split(brokers, ",")
	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
