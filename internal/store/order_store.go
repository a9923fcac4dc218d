// Package store содержит in-memory хранилища координатора.
// Состояние живёт в памяти процесса и не переживает рестарт — персистентное
// хранение сознательно вне зоны ответственности этой системы. Каждое
// хранилище владеет своими данными и защищает инварианты на границе:
// наружу не отдаётся ни одна внутренняя структура, только копии.
package store

import (
	"sync"
	"time"

	"example.com/checkout-coordinator/internal/domain"
)

// OrderStore — хранилище заказов; единственный владелец их жизненного цикла.
// Все переходы статуса выполняются под write-блокировкой, поэтому
// конкурирующие cancel/webhook не могут переплестись в некорректное
// промежуточное состояние.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
	nextID int64
	now    func() time.Time
}

// NewOrderStore создаёт пустое хранилище заказов.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[int64]*domain.Order),
		now:    time.Now,
	}
}

// SetClock подменяет источник времени. Только для тестов.
func (s *OrderStore) SetClock(now func() time.Time) {
	s.now = now
}

// Create создаёт заказ в статусе pending с новым монотонным id.
func (s *OrderStore) Create(amount int64, currency string) (*domain.Order, error) {
	order := &domain.Order{
		Amount:   amount,
		Currency: currency,
		Status:   domain.OrderStatusPending,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	order.ID = s.nextID
	order.CreatedAt = s.now()
	s.orders[order.ID] = order

	return order.Clone(), nil
}

// Get возвращает копию заказа по id.
func (s *OrderStore) Get(id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// Cancel отменяет заказ. Повторная отмена отменённого заказа — no-op успех,
// отмена оплаченного/завершённого — ErrOrderCannotCancel.
func (s *OrderStore) Cancel(id int64) (*domain.Order, error) {
	return s.transition(id, func(o *domain.Order, now time.Time) error {
		return o.Cancel(now)
	})
}

// MarkPaid переводит заказ в paid. Сработает не более одного раза:
// для уже оплаченного или терминального заказа вернёт ErrOrderNotPayable.
// На этой гарантии держится at-most-once создание ledger записи.
func (s *OrderStore) MarkPaid(id int64) (*domain.Order, error) {
	return s.transition(id, func(o *domain.Order, now time.Time) error {
		return o.MarkPaid(now)
	})
}

// ConfirmReceived подтверждает получение оплаченного заказа.
func (s *OrderStore) ConfirmReceived(id int64) (*domain.Order, error) {
	return s.transition(id, func(o *domain.Order, now time.Time) error {
		return o.Complete(now)
	})
}

// AddFeedback добавляет отзыв к заказу в любом статусе.
func (s *OrderStore) AddFeedback(id int64, message string) (*domain.Order, error) {
	return s.transition(id, func(o *domain.Order, now time.Time) error {
		return o.AddFeedback(message, now)
	})
}

// transition выполняет мутацию заказа под write-блокировкой
// и возвращает копию результата.
func (s *OrderStore) transition(id int64, mutate func(*domain.Order, time.Time) error) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	if err := mutate(order, s.now()); err != nil {
		return nil, err
	}

	return order.Clone(), nil
}
