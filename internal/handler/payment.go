package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/checkout-coordinator/internal/domain"
	"example.com/checkout-coordinator/internal/processor"
	"example.com/checkout-coordinator/internal/store"
	"example.com/checkout-coordinator/pkg/logger"
	"example.com/checkout-coordinator/pkg/metrics"
)

// IntentIssuer — контракт клиента процессора для создания intent.
type IntentIssuer interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*processor.Intent, error)
}

// PaymentHandler — обработчик платёжных намерений.
type PaymentHandler struct {
	issuer   IntentIssuer
	orders   *store.OrderStore
	payments *store.PaymentRegistry
}

// NewPaymentHandler создаёт обработчик платежей.
func NewPaymentHandler(issuer IntentIssuer, orders *store.OrderStore, payments *store.PaymentRegistry) *PaymentHandler {
	return &PaymentHandler{
		issuer:   issuer,
		orders:   orders,
		payments: payments,
	}
}

// === Request/Response DTOs ===

// CreateIntentRequest — запрос на создание платёжного намерения.
type CreateIntentRequest struct {
	OrderID int64 `json:"order_id" binding:"required,min=1"`
}

// CreateIntentResponse — ответ с созданным платёжным намерением.
// client_secret передаётся фронтенду для завершения оплаты у процессора.
type CreateIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	OrderID      int64  `json:"order_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// === Handlers ===

// CreateIntent создаёт платёжное намерение для pending заказа.
// POST /api/v1/payments/create-intent
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Невалидный запрос на создание intent")
		metrics.PaymentIntentsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	order, err := h.orders.Get(req.OrderID)
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("rejected").Inc()
		HandleDomainError(c, err, "CreateIntent")
		return
	}

	// Intent выдаётся только для оплачиваемого заказа.
	if !order.CanPay() {
		metrics.PaymentIntentsTotal.WithLabelValues("rejected").Inc()
		HandleDomainError(c, domain.ErrOrderNotPayable, "CreateIntent")
		return
	}

	intent, err := h.issuer.CreateIntent(ctx, order.Amount, order.Currency)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProcessorMisconfigured):
			metrics.PaymentIntentsTotal.WithLabelValues("misconfigured").Inc()
		case errors.Is(err, domain.ErrProcessorUnavailable):
			metrics.PaymentIntentsTotal.WithLabelValues("unavailable").Inc()
		}
		HandleDomainError(c, err, "CreateIntent")
		return
	}

	if _, err := h.payments.Register(intent.ID, order.ID); err != nil {
		// Процессор выдал уже известный intent id — рассинхрон окружений.
		log.Error().Err(err).
			Str("intent_id", intent.ID).
			Int64("order_id", order.ID).
			Msg("Intent от процессора конфликтует с реестром")
		HandleDomainError(c, err, "CreateIntent")
		return
	}

	metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()

	log.Info().
		Str("intent_id", intent.ID).
		Int64("order_id", order.ID).
		Int64("amount", order.Amount).
		Msg("Платёжное намерение создано")

	c.JSON(http.StatusCreated, CreateIntentResponse{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		OrderID:      order.ID,
		Amount:       order.Amount,
		Currency:     order.Currency,
	})
}
