package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/checkout-coordinator/internal/domain"
)

func TestSimulationHandler_SimulatePayment(t *testing.T) {
	t.Run("симуляция оплачивает заказ", func(t *testing.T) {
		env := newTestEnv(t, withSimulation("dev-secret"))
		order := env.mustCreateOrder(t, 2000)

		w := env.do(t, http.MethodPost, "/api/v1/testing/simulate",
			SimulateRequest{OrderID: order.ID},
			map[string]string{DevSecretHeader: "dev-secret"})
		require.Equal(t, http.StatusOK, w.Code, "тело: %s", w.Body.String())

		got := decode[OrderResponse](t, w)
		assert.Equal(t, string(domain.OrderStatusPaid), got.Status)
		assert.Equal(t, 1, env.ledger.Len())
	})

	t.Run("неверный credential — 403", func(t *testing.T) {
		env := newTestEnv(t, withSimulation("dev-secret"))
		order := env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/testing/simulate",
			SimulateRequest{OrderID: order.ID},
			map[string]string{DevSecretHeader: "wrong"})
		require.Equal(t, http.StatusForbidden, w.Code)

		got, err := env.orders.Get(order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, got.Status)
	})

	t.Run("без credential — 403", func(t *testing.T) {
		env := newTestEnv(t, withSimulation("dev-secret"))
		order := env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/testing/simulate",
			SimulateRequest{OrderID: order.ID}, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("пустой secret — симуляция без credential", func(t *testing.T) {
		env := newTestEnv(t, withSimulation(""))
		order := env.mustCreateOrder(t, 1000)

		w := env.do(t, http.MethodPost, "/api/v1/testing/simulate",
			SimulateRequest{OrderID: order.ID}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("симуляция выключена — маршрут не существует", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/v1/testing/simulate",
			SimulateRequest{OrderID: 1}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("симуляция отменённого заказа", func(t *testing.T) {
		env := newTestEnv(t, withSimulation(""))
		env.mustCreateOrder(t, 1000)
		env.do(t, http.MethodPost, "/api/v1/orders/1/cancel", nil, nil)

		w := env.do(t, http.MethodPost, "/api/v1/testing/simulate",
			SimulateRequest{OrderID: 1}, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "invalid_state", resp.Error)
	})
}

func TestLedgerHandler_ListLedger(t *testing.T) {
	env := newTestEnv(t, withSimulation(""))

	t.Run("пустой журнал", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/ledger", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[ListLedgerResponse](t, w)
		assert.Zero(t, resp.Total)
		assert.Empty(t, resp.Entries)
	})

	t.Run("записи после оплаты", func(t *testing.T) {
		order := env.mustCreateOrder(t, 2000)
		w := env.do(t, http.MethodPost, "/api/v1/testing/simulate",
			SimulateRequest{OrderID: order.ID}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/ledger", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[ListLedgerResponse](t, w)
		require.Equal(t, 1, resp.Total)
		entry := resp.Entries[0]
		assert.Equal(t, order.ID, entry.OrderID)
		assert.Equal(t, int64(2000), entry.AmountGross)
		assert.Equal(t, int64(100), entry.PlatformFee)
		assert.Equal(t, int64(1900), entry.SellerNet)
		assert.Equal(t, "pending", entry.PayoutStatus)
	})
}

func TestRouter_HealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
