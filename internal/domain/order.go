package domain

import (
	"strings"
	"time"
)

// OrderStatus — статус заказа в жизненном цикле.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, ожидает оплаты.
	OrderStatusPending OrderStatus = "pending"

	// OrderStatusPaid — оплата подтверждена процессором.
	OrderStatusPaid OrderStatus = "paid"

	// OrderStatusCancelled — заказ отменён до оплаты. Терминальный.
	OrderStatusCancelled OrderStatus = "cancelled"

	// OrderStatusCompleted — покупатель подтвердил получение. Терминальный.
	OrderStatusCompleted OrderStatus = "completed"
)

// FeedbackEntry — запись отзыва к заказу.
type FeedbackEntry struct {
	Message   string    // Текст отзыва
	CreatedAt time.Time // Время добавления
}

// Order — заказ витрины.
// Суммы хранятся в минимальных единицах валюты (центы) во избежание
// проблем с плавающей точкой.
type Order struct {
	ID       int64       // Уникальный монотонный идентификатор
	Amount   int64       // Сумма в минимальных единицах, неизменна после создания
	Currency string      // ISO 4217 код валюты (нижний регистр)
	Status   OrderStatus // Текущий статус

	CreatedAt   time.Time  // Время создания
	PaidAt      *time.Time // Время перехода в paid (ставится один раз)
	CancelledAt *time.Time // Время отмены (ставится один раз)
	CompletedAt *time.Time // Время подтверждения получения (ставится один раз)

	Feedback []FeedbackEntry // Отзывы, append-only, в любом статусе
}

// Validate проверяет корректность полей заказа перед созданием.
func (o *Order) Validate() error {
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CanCancel проверяет, можно ли отменить заказ.
// Отменить можно только заказ в статусе pending.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending
}

// Cancel отменяет заказ.
// Повторная отмена уже отменённого заказа — no-op успех: инвариантов она
// не нарушает, а процессор/клиент может повторить запрос.
func (o *Order) Cancel(now time.Time) error {
	if o.Status == OrderStatusCancelled {
		return nil
	}
	if !o.CanCancel() {
		return ErrOrderCannotCancel
	}
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	return nil
}

// CanPay проверяет, можно ли перевести заказ в paid.
// Оплатить можно только заказ в статусе pending.
func (o *Order) CanPay() bool {
	return o.Status == OrderStatusPending
}

// MarkPaid переводит заказ в paid и ставит paid_at.
// Возвращает ошибку, если заказ уже оплачен либо терминален —
// это защита от повторной доставки события и от гонки cancel/pay.
func (o *Order) MarkPaid(now time.Time) error {
	if !o.CanPay() {
		return ErrOrderNotPayable
	}
	o.Status = OrderStatusPaid
	o.PaidAt = &now
	return nil
}

// Complete подтверждает получение заказа покупателем.
// Допустим только из статуса paid.
func (o *Order) Complete(now time.Time) error {
	if o.Status != OrderStatusPaid {
		return ErrOrderCannotComplete
	}
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	return nil
}

// AddFeedback добавляет отзыв. Допустим в любом статусе.
func (o *Order) AddFeedback(message string, now time.Time) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyFeedback
	}
	o.Feedback = append(o.Feedback, FeedbackEntry{
		Message:   message,
		CreatedAt: now,
	})
	return nil
}

// Clone возвращает глубокую копию заказа.
// Хранилище отдаёт наружу только копии, чтобы читатели не наблюдали
// промежуточных состояний конкурентных переходов.
func (o *Order) Clone() *Order {
	c := *o
	if len(o.Feedback) > 0 {
		c.Feedback = make([]FeedbackEntry, len(o.Feedback))
		copy(c.Feedback, o.Feedback)
	}
	return &c
}
