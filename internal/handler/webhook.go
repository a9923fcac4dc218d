package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/checkout-coordinator/internal/dispatcher"
	"example.com/checkout-coordinator/internal/domain"
	"example.com/checkout-coordinator/internal/processor"
	"example.com/checkout-coordinator/pkg/logger"
	"example.com/checkout-coordinator/pkg/metrics"
)

// maxWebhookBody ограничивает размер тела webhook запроса.
const maxWebhookBody = 64 * 1024

// WebhookHandler принимает события платёжного процессора.
type WebhookHandler struct {
	verifier   *processor.WebhookVerifier
	dispatcher *dispatcher.Dispatcher
}

// NewWebhookHandler создаёт обработчик вебхуков.
func NewWebhookHandler(verifier *processor.WebhookVerifier, d *dispatcher.Dispatcher) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		dispatcher: d,
	}
}

// WebhookResponse — подтверждение приёма события.
type WebhookResponse struct {
	Received bool `json:"received"`
}

// HandleWebhook проверяет подпись и передаёт событие диспетчеру.
// POST /api/v1/webhook
//
// Контракт с процессором: 200 — событие принято (даже если оно дубликат,
// неизвестного типа или по неизвестному intent), 400 — подпись не прошла
// и доставку имеет смысл повторить только с корректной подписью.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Warn().Err(err).Msg("Не удалось прочитать тело webhook")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Не удалось прочитать тело запроса",
		})
		return
	}

	if err := h.verifier.Verify(c.GetHeader(processor.SignatureHeader), body); err != nil {
		log.Warn().Msg("Webhook с невалидной подписью отклонён")
		metrics.RecordWebhookEvent("unknown", "rejected")
		HandleDomainError(c, domain.ErrInvalidSignature, "HandleWebhook")
		return
	}

	event, err := domain.ParseWebhookEvent(body)
	if err != nil {
		// Подпись валидна, тело кривое: аномалия процессора.
		// Подтверждаем, чтобы не зациклить доставку.
		log.Warn().Err(err).Msg("Аутентичное событие с некорректным телом, подтверждаем без обработки")
		metrics.RecordWebhookEvent("unknown", "rejected")
		c.JSON(http.StatusOK, WebhookResponse{Received: true})
		return
	}

	h.dispatcher.Handle(ctx, event)

	c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
