package domain

import "time"

// PaymentStatus — статус платёжной записи.
type PaymentStatus string

const (
	// PaymentStatusPending — intent открыт, исход неизвестен.
	PaymentStatusPending PaymentStatus = "pending"

	// PaymentStatusSucceeded — процессор подтвердил оплату. Терминальный.
	PaymentStatusSucceeded PaymentStatus = "succeeded"

	// PaymentStatusFailed — процессор отклонил оплату. Терминальный.
	PaymentStatusFailed PaymentStatus = "failed"
)

// PaymentRecord — локальное отражение payment intent процессора.
// ID — это intent id, выданный процессором; он же служит ключом
// идемпотентности для webhook событий.
type PaymentRecord struct {
	ID        string        // Intent id процессора (opaque строка)
	OrderID   int64         // Заказ, к которому привязан intent
	Status    PaymentStatus // Текущий статус
	CreatedAt time.Time     // Время регистрации
	UpdatedAt time.Time     // Время последнего перехода
}

// Terminal возвращает true, если запись в терминальном статусе.
func (p *PaymentRecord) Terminal() bool {
	return p.Status == PaymentStatusSucceeded || p.Status == PaymentStatusFailed
}

// MarkSucceeded переводит запись в succeeded.
// Возвращает false, если запись уже терминальна — повторная доставка
// события не должна перезапускать переход заказа.
func (p *PaymentRecord) MarkSucceeded(now time.Time) bool {
	if p.Terminal() {
		return false
	}
	p.Status = PaymentStatusSucceeded
	p.UpdatedAt = now
	return true
}

// MarkFailed переводит запись в failed.
// Возвращает false, если запись уже терминальна.
func (p *PaymentRecord) MarkFailed(now time.Time) bool {
	if p.Terminal() {
		return false
	}
	p.Status = PaymentStatusFailed
	p.UpdatedAt = now
	return true
}
