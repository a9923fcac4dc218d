package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"example.com/checkout-coordinator/internal/dispatcher"
	"example.com/checkout-coordinator/internal/events"
	"example.com/checkout-coordinator/internal/processor"
	"example.com/checkout-coordinator/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testWebhookSecret = "whsec_test"

// fakeIssuer — подменный клиент процессора для тестов handlers.
type fakeIssuer struct {
	intent *processor.Intent
	err    error
	calls  int
}

func (f *fakeIssuer) CreateIntent(_ context.Context, _ int64, _ string) (*processor.Intent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

// testEnv — полный стек координатора поверх httptest.
type testEnv struct {
	router   *Router
	orders   *store.OrderStore
	payments *store.PaymentRegistry
	ledger   *store.Ledger
	issuer   *fakeIssuer
	verifier *processor.WebhookVerifier
}

type envOption func(*envConfig)

type envConfig struct {
	webhookSecret string
	simEnabled    bool
	simSecret     string
	issuerErr     error
}

func withDegradedWebhooks() envOption {
	return func(c *envConfig) { c.webhookSecret = "" }
}

func withSimulation(secret string) envOption {
	return func(c *envConfig) {
		c.simEnabled = true
		c.simSecret = secret
	}
}

func withIssuerError(err error) envOption {
	return func(c *envConfig) { c.issuerErr = err }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{webhookSecret: testWebhookSecret}
	for _, opt := range opts {
		opt(&cfg)
	}

	orders := store.NewOrderStore()
	payments := store.NewPaymentRegistry()
	ledger := store.NewLedger()

	d := dispatcher.New(dispatcher.Config{
		FeeRate:     0.05,
		PayoutDelay: 336 * time.Hour,
		SellerID:    "seller_main",
	}, orders, payments, ledger, events.NewPublisher(nil))

	issuer := &fakeIssuer{
		intent: &processor.Intent{ID: "pi_test_1", ClientSecret: "pi_test_1_secret"},
		err:    cfg.issuerErr,
	}

	verifier := processor.NewWebhookVerifier(cfg.webhookSecret, 5*time.Minute)

	var simHandler *SimulationHandler
	if cfg.simEnabled {
		simHandler = NewSimulationHandler(d, payments, cfg.simSecret)
	}

	router := NewRouter(RouterConfig{
		OrderHandler:      NewOrderHandler(orders, payments, 1000, "usd"),
		PaymentHandler:    NewPaymentHandler(issuer, orders, payments),
		WebhookHandler:    NewWebhookHandler(verifier, d),
		LedgerHandler:     NewLedgerHandler(ledger),
		SimulationHandler: simHandler,
		ServiceName:       "checkout-coordinator-test",
	})

	return &testEnv{
		router:   router,
		orders:   orders,
		payments: payments,
		ledger:   ledger,
		issuer:   issuer,
		verifier: verifier,
	}
}

// do выполняет запрос к роутеру и возвращает recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.Engine().ServeHTTP(w, req)
	return w
}

// signedWebhook отправляет webhook с валидной подписью.
func (e *testEnv) signedWebhook(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	header := processor.BuildSignatureHeader([]byte(testWebhookSecret), time.Now().Unix(), []byte(body))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(processor.SignatureHeader, header)

	w := httptest.NewRecorder()
	e.router.Engine().ServeHTTP(w, req)
	return w
}

// decode разбирает JSON тело ответа в указанную структуру.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "тело: %s", w.Body.String())
	return out
}

// mustCreateOrder создаёт заказ через API и возвращает его.
func (e *testEnv) mustCreateOrder(t *testing.T, amount int64) OrderResponse {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/v1/orders", CreateOrderRequest{Amount: &amount}, nil)
	require.Equal(t, http.StatusCreated, w.Code, "тело: %s", w.Body.String())
	return decode[OrderResponse](t, w)
}

func succeededBody(intentID string) string {
	return `{"id":"evt_1","type":"payment.succeeded","data":{"payment_intent_id":"` + intentID + `"}}`
}
