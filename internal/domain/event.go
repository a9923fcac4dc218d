package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventType — тип webhook события процессора.
// Закрытый набор: всё, что не перечислено, обрабатывается веткой
// "неизвестный тип" (подтверждается, логируется, состояние не меняется).
type EventType string

const (
	// EventPaymentSucceeded — оплата intent подтверждена.
	EventPaymentSucceeded EventType = "payment.succeeded"

	// EventPaymentFailed — оплата intent отклонена.
	EventPaymentFailed EventType = "payment.failed"
)

// Known возвращает true для типов, по которым определены переходы.
func (t EventType) Known() bool {
	return t == EventPaymentSucceeded || t == EventPaymentFailed
}

// WebhookEvent — аутентифицированное (или симулированное) событие процессора.
type WebhookEvent struct {
	ID       string    // Id события у процессора (evt_...)
	Type     EventType // Тип события
	IntentID string    // Intent id, к которому относится событие
}

// webhookPayload — wire формат тела webhook запроса.
type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		PaymentIntentID string `json:"payment_intent_id"`
	} `json:"data"`
}

// ParseWebhookEvent разбирает тело webhook запроса.
// Вызывается только ПОСЛЕ проверки подписи: структурные проблемы
// аутентичного события — аномалия, а не ошибка вызывающего.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("некорректное тело события: %w", err)
	}

	if strings.TrimSpace(p.Data.PaymentIntentID) == "" {
		return nil, fmt.Errorf("событие %s без payment_intent_id", p.ID)
	}

	return &WebhookEvent{
		ID:       p.ID,
		Type:     EventType(p.Type),
		IntentID: p.Data.PaymentIntentID,
	}, nil
}
