package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/checkout-coordinator/internal/domain"
	"example.com/checkout-coordinator/internal/store"
	"example.com/checkout-coordinator/pkg/logger"
)

// OrderHandler — обработчик заказов.
type OrderHandler struct {
	orders          *store.OrderStore
	payments        *store.PaymentRegistry
	defaultAmount   int64
	defaultCurrency string
}

// NewOrderHandler создаёт новый обработчик заказов.
func NewOrderHandler(orders *store.OrderStore, payments *store.PaymentRegistry, defaultAmount int64, defaultCurrency string) *OrderHandler {
	return &OrderHandler{
		orders:          orders,
		payments:        payments,
		defaultAmount:   defaultAmount,
		defaultCurrency: defaultCurrency,
	}
}

// === Request/Response DTOs ===

// CreateOrderRequest — запрос на создание заказа.
// Оба поля опциональны: без amount берётся сумма по умолчанию из конфигурации.
type CreateOrderRequest struct {
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency"`
}

// FeedbackRequest — запрос на добавление отзыва.
type FeedbackRequest struct {
	Message string `json:"message" binding:"required"`
}

// FeedbackResponse — отзыв в ответе.
type FeedbackResponse struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse — заказ в ответе API.
// Состояние платежа (последнее платёжное намерение заказа) отражается
// прямо в теле заказа, отдельного endpoint платежа нет.
type OrderResponse struct {
	ID              int64              `json:"id"`
	Amount          int64              `json:"amount"`
	Currency        string             `json:"currency"`
	Status          string             `json:"status"`
	PaymentIntentID string             `json:"payment_intent_id,omitempty"`
	PaymentStatus   string             `json:"payment_status,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	PaidAt          *time.Time         `json:"paid_at,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	Feedback        []FeedbackResponse `json:"feedback,omitempty"`
}

// === Handlers ===

// CreateOrder создаёт новый заказ в статусе pending.
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		log.Debug().Err(err).Msg("Невалидный запрос на создание заказа")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	amount := h.defaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	currency := req.Currency
	if currency == "" {
		currency = h.defaultCurrency
	}

	order, err := h.orders.Create(amount, currency)
	if err != nil {
		HandleDomainError(c, err, "CreateOrder")
		return
	}

	log.Info().
		Int64("order_id", order.ID).
		Int64("amount", order.Amount).
		Str("currency", order.Currency).
		Msg("Заказ создан")

	h.respond(c, http.StatusCreated, order)
}

// GetOrder возвращает заказ по id.
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orders.Get(orderID)
	if err != nil {
		HandleDomainError(c, err, "GetOrder")
		return
	}

	h.respond(c, http.StatusOK, order)
}

// CancelOrder отменяет заказ. Повторная отмена — no-op успех.
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orders.Cancel(orderID)
	if err != nil {
		HandleDomainError(c, err, "CancelOrder")
		return
	}

	log.Info().Int64("order_id", order.ID).Msg("Заказ отменён")

	h.respond(c, http.StatusOK, order)
}

// ConfirmReceived подтверждает получение оплаченного заказа.
// POST /api/v1/orders/:id/confirm-received
func (h *OrderHandler) ConfirmReceived(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.orders.ConfirmReceived(orderID)
	if err != nil {
		HandleDomainError(c, err, "ConfirmReceived")
		return
	}

	log.Info().Int64("order_id", order.ID).Msg("Получение заказа подтверждено")

	h.respond(c, http.StatusOK, order)
}

// AddFeedback добавляет отзыв к заказу. Статус заказа не важен.
// POST /api/v1/orders/:id/feedback
func (h *OrderHandler) AddFeedback(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Невалидный запрос на добавление отзыва")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	order, err := h.orders.AddFeedback(orderID, req.Message)
	if err != nil {
		HandleDomainError(c, err, "AddFeedback")
		return
	}

	log.Info().Int64("order_id", order.ID).Msg("Отзыв добавлен")

	h.respond(c, http.StatusOK, order)
}

// === Helper functions ===

// orderID извлекает числовой id заказа из path параметра.
func (h *OrderHandler) orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "ID заказа должен быть положительным числом",
		})
		return 0, false
	}
	return id, true
}

// respond отправляет заказ, обогащённый состоянием последнего платежа.
func (h *OrderHandler) respond(c *gin.Context, status int, o *domain.Order) {
	rec, _ := h.payments.FindByOrder(o.ID)
	c.JSON(status, orderToResponse(o, rec))
}

// orderToResponse преобразует domain.Order в OrderResponse.
// rec — последняя платёжная запись заказа, nil если платежей не было.
func orderToResponse(o *domain.Order, rec *domain.PaymentRecord) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		Amount:      o.Amount,
		Currency:    o.Currency,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		PaidAt:      o.PaidAt,
		CancelledAt: o.CancelledAt,
		CompletedAt: o.CompletedAt,
	}

	if rec != nil {
		resp.PaymentIntentID = rec.ID
		resp.PaymentStatus = string(rec.Status)
	}

	for _, f := range o.Feedback {
		resp.Feedback = append(resp.Feedback, FeedbackResponse{
			Message:   f.Message,
			CreatedAt: f.CreatedAt,
		})
	}

	return resp
}
