package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/checkout-coordinator/internal/dispatcher"
	"example.com/checkout-coordinator/internal/domain"
	"example.com/checkout-coordinator/internal/store"
	"example.com/checkout-coordinator/pkg/logger"
)

// DevSecretHeader — заголовок с credential доступа к симуляции.
const DevSecretHeader = "X-Dev-Secret"

// SimulationHandler — dev-путь оплаты без внешнего процессора.
// Регистрируется в роутере только при включённой симуляции, поэтому
// в production этот код недостижим.
type SimulationHandler struct {
	dispatcher *dispatcher.Dispatcher
	payments   *store.PaymentRegistry
	secret     string
}

// NewSimulationHandler создаёт обработчик симуляции.
// Пустой secret — симуляция доступна без credential (только dev).
func NewSimulationHandler(d *dispatcher.Dispatcher, payments *store.PaymentRegistry, secret string) *SimulationHandler {
	return &SimulationHandler{
		dispatcher: d,
		payments:   payments,
		secret:     secret,
	}
}

// SimulateRequest — запрос на симуляцию оплаты заказа.
type SimulateRequest struct {
	OrderID int64 `json:"order_id" binding:"required,min=1"`
}

// SimulatePayment симулирует успешную оплату заказа.
// POST /api/v1/testing/simulate
func (h *SimulationHandler) SimulatePayment(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	if h.secret != "" {
		provided := c.GetHeader(DevSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			log.Warn().Msg("Попытка симуляции с неверным credential")
			HandleDomainError(c, domain.ErrSimulationForbidden, "SimulatePayment")
			return
		}
	}

	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Невалидный запрос на симуляцию")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Невалидные данные запроса",
		})
		return
	}

	order, err := h.dispatcher.SimulatePayment(ctx, req.OrderID)
	if err != nil {
		HandleDomainError(c, err, "SimulatePayment")
		return
	}

	rec, _ := h.payments.FindByOrder(order.ID)
	c.JSON(http.StatusOK, orderToResponse(order, rec))
}
