// Package events публикует доменные события координатора в Kafka.
// Публикация — best effort: сбой брокера логируется, но не откатывает
// уже применённое изменение состояния.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"example.com/checkout-coordinator/pkg/kafka"
	"example.com/checkout-coordinator/pkg/logger"
)

// Типы публикуемых событий.
const (
	TypeOrderPaid     = "order.paid"
	TypePaymentFailed = "payment.failed"
)

// Envelope — общий конверт события в топике payment.events.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// OrderPaidEvent — payload события order.paid.
type OrderPaidEvent struct {
	OrderID     int64  `json:"order_id"`
	IntentID    string `json:"intent_id"`
	AmountGross int64  `json:"amount_gross"`
	PlatformFee int64  `json:"platform_fee"`
	SellerNet   int64  `json:"seller_net"`
	Currency    string `json:"currency"`
}

// PaymentFailedEvent — payload события payment.failed.
type PaymentFailedEvent struct {
	OrderID  int64  `json:"order_id"`
	IntentID string `json:"intent_id"`
}

// Sender — минимальный контракт продьюсера, который нужен публикатору.
type Sender interface {
	Send(ctx context.Context, topic string, key, value []byte) error
}

// Publisher пишет события в топик payment.events.
// nil-safe: Publisher с nil sender молча игнорирует публикацию,
// что позволяет запускать сервис без Kafka.
type Publisher struct {
	sender Sender
}

// NewPublisher создаёт публикатора. sender == nil отключает публикацию.
func NewPublisher(sender Sender) *Publisher {
	return &Publisher{sender: sender}
}

// Enabled сообщает, подключён ли продьюсер.
func (p *Publisher) Enabled() bool {
	return p != nil && p.sender != nil
}

// OrderPaid публикует событие успешной оплаты заказа.
func (p *Publisher) OrderPaid(ctx context.Context, ev OrderPaidEvent) {
	p.publish(ctx, TypeOrderPaid, ev.IntentID, ev)
}

// PaymentFailed публикует событие неуспешного платежа.
func (p *Publisher) PaymentFailed(ctx context.Context, ev PaymentFailedEvent) {
	p.publish(ctx, TypePaymentFailed, ev.IntentID, ev)
}

func (p *Publisher) publish(ctx context.Context, eventType, key string, payload any) {
	if !p.Enabled() {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("type", eventType).Msg("сериализация payload события")
		return
	}

	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("type", eventType).Msg("сериализация конверта события")
		return
	}

	if err := p.sender.Send(ctx, kafka.TopicPaymentEvents, []byte(key), value); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("type", eventType).
			Str("topic", kafka.TopicPaymentEvents).
			Msg("публикация события в Kafka не удалась")
	}
}
