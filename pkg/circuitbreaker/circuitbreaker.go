// Package circuitbreaker предоставляет Circuit Breaker для внешних HTTP
// зависимостей (платёжный процессор).
//
// Состояния:
//   - Closed: нормальная работа, вызовы проходят
//   - Open: зависимость недоступна, вызовы отклоняются мгновенно
//   - Half-Open: пробный период, пропускаем часть вызовов
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"example.com/checkout-coordinator/pkg/logger"
)

// ErrOpen возвращается, когда breaker отклоняет вызов без его выполнения.
var ErrOpen = errors.New("circuit breaker открыт")

// Settings — настройки Circuit Breaker.
type Settings struct {
	MaxRequests  uint32        // Макс. вызовов в Half-Open (по умолчанию 1)
	Interval     time.Duration // Интервал сброса счётчика в Closed (60s)
	Timeout      time.Duration // Время в Open до перехода в Half-Open (30s)
	FailureRatio float64       // Доля ошибок для перехода в Open (0.5)
	MinRequests  uint32        // Мин. вызовов для расчёта ratio (5)
}

// DefaultSettings возвращает настройки по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// Breaker — обёртка над gobreaker с логированием смены состояний.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// New создаёт Circuit Breaker с настройками по умолчанию.
func New(name string) *Breaker {
	return NewWithSettings(name, DefaultSettings())
}

// NewWithSettings создаёт Circuit Breaker с пользовательскими настройками.
func NewWithSettings(name string, s Settings) *Breaker {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,

		// Открываем при доле ошибок >= FailureRatio и >= MinRequests вызовов.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},

		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log := logger.With().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Logger()

			switch to {
			case gobreaker.StateOpen:
				log.Warn().Msg("Circuit Breaker ОТКРЫТ — зависимость недоступна")
			case gobreaker.StateHalfOpen:
				log.Info().Msg("Circuit Breaker ПОЛУОТКРЫТ — пробуем восстановить")
			case gobreaker.StateClosed:
				log.Info().Msg("Circuit Breaker ЗАКРЫТ — зависимость восстановлена")
			}
		},
	})

	return &Breaker{cb: cb, name: name}
}

// Execute выполняет fn через Circuit Breaker.
// Если breaker открыт или в Half-Open лимит исчерпан — возвращает ErrOpen
// без выполнения fn. Иначе возвращает результат fn без изменений.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrOpen
	}
	return result, err
}

// State возвращает текущее состояние breaker.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Name возвращает имя breaker.
func (b *Breaker) Name() string {
	return b.name
}
