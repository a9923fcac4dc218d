package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/checkout-coordinator/internal/domain"
)

func TestOrderHandler_CreateOrder(t *testing.T) {
	t.Run("создание с явной суммой", func(t *testing.T) {
		env := newTestEnv(t)

		order := env.mustCreateOrder(t, 2500)
		assert.Equal(t, int64(2500), order.Amount)
		assert.Equal(t, "usd", order.Currency)
		assert.Equal(t, string(domain.OrderStatusPending), order.Status)
	})

	t.Run("пустое тело — сумма по умолчанию", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/v1/orders", nil, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		order := decode[OrderResponse](t, w)
		assert.Equal(t, int64(1000), order.Amount)
	})

	t.Run("отрицательная сумма", func(t *testing.T) {
		env := newTestEnv(t)

		amount := int64(-5)
		w := env.do(t, http.MethodPost, "/api/v1/orders", CreateOrderRequest{Amount: &amount}, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "invalid_argument", resp.Error)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.mustCreateOrder(t, 1000)

	t.Run("существующий заказ", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/orders/1", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[OrderResponse](t, w)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("несуществующий заказ", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/orders/999", nil, nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "not_found", resp.Error)
	})

	t.Run("нечисловой id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/orders/abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	t.Run("отмена pending заказа", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/orders/1/cancel", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[OrderResponse](t, w)
		assert.Equal(t, string(domain.OrderStatusCancelled), got.Status)
		assert.NotNil(t, got.CancelledAt)
	})

	t.Run("повторная отмена — успех", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/orders/1/cancel", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/orders/1/cancel", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("отмена оплаченного заказа", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.mustCreateOrder(t, 1000)
		_, err := env.payments.Register("pi_1", order.ID)
		require.NoError(t, err)

		w := env.signedWebhook(t, succeededBody("pi_1"))
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/orders/1/cancel", nil, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "invalid_state", resp.Error)
	})
}

func TestOrderHandler_ConfirmReceived(t *testing.T) {
	t.Run("подтверждение оплаченного заказа", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.mustCreateOrder(t, 1000)
		_, err := env.payments.Register("pi_1", order.ID)
		require.NoError(t, err)
		env.signedWebhook(t, succeededBody("pi_1"))

		w := env.do(t, http.MethodPost, "/api/v1/orders/1/confirm-received", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[OrderResponse](t, w)
		assert.Equal(t, string(domain.OrderStatusCompleted), got.Status)
	})

	t.Run("подтверждение pending заказа", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/orders/1/confirm-received", nil, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "invalid_state", resp.Error)
	})
}

func TestOrderHandler_AddFeedback(t *testing.T) {
	t.Run("добавление отзыва", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/orders/1/feedback",
			FeedbackRequest{Message: "всё отлично"}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[OrderResponse](t, w)
		require.Len(t, got.Feedback, 1)
		assert.Equal(t, "всё отлично", got.Feedback[0].Message)
	})

	t.Run("пустой отзыв", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/orders/1/feedback",
			FeedbackRequest{Message: ""}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("отзыв к отменённому заказу разрешён", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateOrder(t, 1000)
		env.do(t, http.MethodPost, "/api/v1/orders/1/cancel", nil, nil)

		w := env.do(t, http.MethodPost, "/api/v1/orders/1/feedback",
			FeedbackRequest{Message: "передумал покупать"}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOrderHandler_PaymentStateInBody(t *testing.T) {
	t.Run("заказ без платежей", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodGet, "/api/v1/orders/1", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[OrderResponse](t, w)
		assert.Empty(t, got.PaymentIntentID)
		assert.Empty(t, got.PaymentStatus)
	})

	t.Run("после создания intent — pending", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/payments/create-intent",
			CreateIntentRequest{OrderID: order.ID}, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/orders/1", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[OrderResponse](t, w)
		assert.Equal(t, "pi_test_1", got.PaymentIntentID)
		assert.Equal(t, string(domain.PaymentStatusPending), got.PaymentStatus)
	})

	t.Run("после успешного вебхука — succeeded", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.mustCreateOrder(t, 1000)
		_, err := env.payments.Register("pi_1", order.ID)
		require.NoError(t, err)

		w := env.signedWebhook(t, succeededBody("pi_1"))
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/orders/1", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[OrderResponse](t, w)
		assert.Equal(t, string(domain.OrderStatusPaid), got.Status)
		assert.Equal(t, "pi_1", got.PaymentIntentID)
		assert.Equal(t, string(domain.PaymentStatusSucceeded), got.PaymentStatus)
	})
}
