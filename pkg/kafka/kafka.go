// Package kafka предоставляет обёртку над kafka-go для публикации событий
// оплаты во внешний поток (downstream аналитика, нотификации).
package kafka

import (
	"context"

	"example.com/checkout-coordinator/pkg/logger"
)

// TopicPaymentEvents — топик по умолчанию для событий оплаты
// (order.paid, payment.failed).
const TopicPaymentEvents = "payment.events"

// Ключи headers сообщений.
const (
	// HeaderTraceID — идентификатор трассировки запроса, породившего событие.
	HeaderTraceID = "trace_id"

	// HeaderTimestamp — временная метка создания сообщения.
	HeaderTimestamp = "timestamp"
)

// Config содержит настройки подключения к Kafka.
type Config struct {
	// Brokers — список адресов брокеров.
	Brokers []string
}

// TraceIDFromContext извлекает trace_id из context.
// Делегирует в pkg/logger для единообразной работы с контекстом.
func TraceIDFromContext(ctx context.Context) string {
	return logger.TraceIDFromContext(ctx)
}
