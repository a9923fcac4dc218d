package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/checkout-coordinator/internal/domain"
)

func TestPaymentRegistry_Register(t *testing.T) {
	r := NewPaymentRegistry()

	t.Run("регистрация нового намерения", func(t *testing.T) {
		rec, err := r.Register("pi_123", 1)
		require.NoError(t, err)
		assert.Equal(t, "pi_123", rec.ID)
		assert.Equal(t, int64(1), rec.OrderID)
		assert.Equal(t, domain.PaymentStatusPending, rec.Status)
	})

	t.Run("повторная регистрация того же intent", func(t *testing.T) {
		_, err := r.Register("pi_123", 2)
		assert.ErrorIs(t, err, domain.ErrDuplicateIntent)
	})
}

func TestPaymentRegistry_Get(t *testing.T) {
	r := NewPaymentRegistry()
	_, err := r.Register("pi_123", 1)
	require.NoError(t, err)

	t.Run("существующая запись", func(t *testing.T) {
		rec, err := r.Get("pi_123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.OrderID)
	})

	t.Run("неизвестный intent", func(t *testing.T) {
		_, err := r.Get("pi_unknown")
		assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	})
}

func TestPaymentRegistry_MarkSucceeded(t *testing.T) {
	r := NewPaymentRegistry()
	_, err := r.Register("pi_123", 1)
	require.NoError(t, err)

	t.Run("первое применение меняет статус", func(t *testing.T) {
		rec, changed, err := r.MarkSucceeded("pi_123")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.PaymentStatusSucceeded, rec.Status)
	})

	t.Run("повтор — дубликат, changed=false", func(t *testing.T) {
		rec, changed, err := r.MarkSucceeded("pi_123")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, domain.PaymentStatusSucceeded, rec.Status)
	})

	t.Run("failed после succeeded не перетирает статус", func(t *testing.T) {
		rec, changed, err := r.MarkFailed("pi_123")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, domain.PaymentStatusSucceeded, rec.Status)
	})

	t.Run("неизвестный intent", func(t *testing.T) {
		_, _, err := r.MarkSucceeded("pi_unknown")
		assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	})
}

func TestPaymentRegistry_MarkFailed(t *testing.T) {
	r := NewPaymentRegistry()
	_, err := r.Register("pi_fail", 2)
	require.NoError(t, err)

	rec, changed, err := r.MarkFailed("pi_fail")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.PaymentStatusFailed, rec.Status)

	// терминальный статус залипает
	_, changed, err = r.MarkSucceeded("pi_fail")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPaymentRegistry_FindByOrder(t *testing.T) {
	r := NewPaymentRegistry()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	r.SetClock(func() time.Time { return clock })

	t.Run("у заказа без платежей записи нет", func(t *testing.T) {
		_, ok := r.FindByOrder(1)
		assert.False(t, ok)
	})

	_, err := r.Register("pi_first", 1)
	require.NoError(t, err)

	t.Run("единственная запись заказа", func(t *testing.T) {
		rec, ok := r.FindByOrder(1)
		require.True(t, ok)
		assert.Equal(t, "pi_first", rec.ID)
	})

	clock = base.Add(time.Minute)
	_, err = r.Register("pi_second", 1)
	require.NoError(t, err)

	t.Run("возвращается самая свежая запись", func(t *testing.T) {
		rec, ok := r.FindByOrder(1)
		require.True(t, ok)
		assert.Equal(t, "pi_second", rec.ID)
	})

	t.Run("записи чужого заказа не попадают", func(t *testing.T) {
		_, ok := r.FindByOrder(2)
		assert.False(t, ok)
	})

	t.Run("возвращается копия, не внутренняя запись", func(t *testing.T) {
		rec, ok := r.FindByOrder(1)
		require.True(t, ok)
		rec.Status = domain.PaymentStatusFailed

		fresh, err := r.Get("pi_second")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPending, fresh.Status)
	})
}
