package domain

import (
	"math"
	"time"
)

// PayoutStatus — статус выплаты продавцу.
type PayoutStatus string

// PayoutStatusPending — выплата запланирована, но не выполнена.
// Дальнейшие переходы выплат вне зоны ответственности координатора.
const PayoutStatusPending PayoutStatus = "pending"

// LedgerEntry — запись о выплате продавцу по оплаченному заказу.
// Создаётся ровно один раз на заказ (гарантируется диспетчером событий),
// никогда не изменяется и не удаляется.
type LedgerEntry struct {
	ID                  string       // UUID записи
	SellerID            string       // Продавец-получатель выплаты
	OrderID             int64        // Оплаченный заказ
	AmountGross         int64        // Валовая сумма заказа (минимальные единицы)
	PlatformFee         int64        // Комиссия платформы: round(gross * fee_rate)
	SellerNet           int64        // К выплате: gross - fee
	Currency            string       // Валюта заказа
	PayoutStatus        PayoutStatus // Всегда pending при создании
	ScheduledPayoutDate time.Time    // Плановая дата выплаты: оплата + задержка
	CreatedAt           time.Time    // Время создания записи
}

// PlatformFee вычисляет комиссию платформы в минимальных единицах.
// Округление математическое: round(gross * rate).
func PlatformFee(gross int64, rate float64) int64 {
	return int64(math.Round(float64(gross) * rate))
}
