package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/checkout-coordinator/internal/domain"
)

// Ledger — append-only журнал распределения выручки.
// Записи никогда не изменяются и не удаляются; единственные операции —
// добавление и чтение снапшота.
type Ledger struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry
	now     func() time.Time
}

// NewLedger создаёт пустой журнал.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// SetClock подменяет источник времени. Только для тестов.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Append добавляет запись в журнал и присваивает ей uuid.
// Суммы в записи уже посчитаны вызывающей стороной.
func (l *Ledger) Append(entry domain.LedgerEntry) *domain.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.CreatedAt = l.now()
	if entry.PayoutStatus == "" {
		entry.PayoutStatus = domain.PayoutStatusPending
	}

	stored := entry
	l.entries = append(l.entries, &stored)

	clone := stored
	return &clone
}

// List возвращает снапшот всех записей в порядке добавления.
func (l *Ledger) List() []*domain.LedgerEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		clone := *e
		out = append(out, &clone)
	}
	return out
}

// Len возвращает количество записей журнала.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
