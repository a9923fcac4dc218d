package store

import (
	"sync"
	"time"

	"example.com/checkout-coordinator/internal/domain"
)

// PaymentRegistry — реестр платёжных намерений по их intent id.
// Терминальные статусы «залипают»: повторные вебхуки по тому же intent
// не меняют запись, а флаг changed позволяет диспетчеру отличить первое
// применение события от дубликата.
type PaymentRegistry struct {
	mu      sync.RWMutex
	records map[string]*domain.PaymentRecord
	now     func() time.Time
}

// NewPaymentRegistry создаёт пустой реестр платежей.
func NewPaymentRegistry() *PaymentRegistry {
	return &PaymentRegistry{
		records: make(map[string]*domain.PaymentRecord),
		now:     time.Now,
	}
}

// SetClock подменяет источник времени. Только для тестов.
func (r *PaymentRegistry) SetClock(now func() time.Time) {
	r.now = now
}

// Register регистрирует новое платёжное намерение для заказа.
// Повторная регистрация того же intent id — ErrDuplicateIntent.
func (r *PaymentRegistry) Register(intentID string, orderID int64) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[intentID]; ok {
		return nil, domain.ErrDuplicateIntent
	}

	now := r.now()
	rec := &domain.PaymentRecord{
		ID:        intentID,
		OrderID:   orderID,
		Status:    domain.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.records[intentID] = rec

	clone := *rec
	return &clone, nil
}

// FindByOrder возвращает копию самой свежей платёжной записи заказа.
// Второе значение false — у заказа ещё не было платёжных намерений.
func (r *PaymentRegistry) FindByOrder(orderID int64) (*domain.PaymentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.PaymentRecord
	for _, rec := range r.records {
		if rec.OrderID != orderID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, false
	}

	clone := *latest
	return &clone, true
}

// Get возвращает копию записи о платеже по intent id.
func (r *PaymentRegistry) Get(intentID string) (*domain.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[intentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	clone := *rec
	return &clone, nil
}

// MarkSucceeded переводит платёж в succeeded. changed=false значит,
// что запись уже была в терминальном статусе и ничего не поменялось.
func (r *PaymentRegistry) MarkSucceeded(intentID string) (*domain.PaymentRecord, bool, error) {
	return r.mark(intentID, (*domain.PaymentRecord).MarkSucceeded)
}

// MarkFailed переводит платёж в failed по тем же правилам.
func (r *PaymentRegistry) MarkFailed(intentID string) (*domain.PaymentRecord, bool, error) {
	return r.mark(intentID, (*domain.PaymentRecord).MarkFailed)
}

func (r *PaymentRegistry) mark(intentID string, apply func(*domain.PaymentRecord, time.Time) bool) (*domain.PaymentRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[intentID]
	if !ok {
		return nil, false, domain.ErrPaymentNotFound
	}

	changed := apply(rec, r.now())

	clone := *rec
	return &clone, changed, nil
}
