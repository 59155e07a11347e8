package app

import "time"

// Config описывает настройки запуска сервиса бронирования.
type Config struct {
	// MetricsAddr — адрес HTTP-сервера метрик и health-проверок.
	MetricsAddr string
	// DatabaseDSN — строка подключения PostgreSQL. Пустое значение
	// переключает сервис на in-memory хранилище.
	DatabaseDSN string
	// KafkaBrokers — список брокеров через запятую. Пустое значение
	// отключает пересылку событий во внешний брокер.
	KafkaBrokers string

	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
	OutboxPublishTimeout time.Duration
}

// DefaultConfig возвращает базовые настройки.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:          ":9090",
		OutboxPollInterval:   1 * time.Second,
		OutboxBatchSize:      100,
		OutboxPublishTimeout: 5 * time.Second,
	}
}
