// Package handler содержит HTTP обработчики REST API координатора.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/checkout-coordinator/internal/domain"
	"example.com/checkout-coordinator/pkg/logger"
)

// ErrorResponse — стандартный формат ошибки API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HandleDomainError преобразует доменную ошибку в HTTP ответ.
// Используется всеми handlers для единообразной обработки ошибок.
// ВАЖНО: err не должен быть nil — это баг в вызывающем коде.
func HandleDomainError(c *gin.Context, err error, method string) {
	if err == nil {
		logger.Error().Str("method", method).Msg("HandleDomainError вызван с nil ошибкой — баг в коде")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	log := logger.FromContext(c.Request.Context())

	var httpStatus int
	var errorCode string

	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		httpStatus = http.StatusNotFound
		errorCode = "not_found"

	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrEmptyFeedback):
		httpStatus = http.StatusBadRequest
		errorCode = "invalid_argument"

	case errors.Is(err, domain.ErrOrderCannotCancel),
		errors.Is(err, domain.ErrOrderCannotComplete),
		errors.Is(err, domain.ErrOrderNotPayable):
		httpStatus = http.StatusBadRequest
		errorCode = "invalid_state"

	case errors.Is(err, domain.ErrDuplicateIntent):
		httpStatus = http.StatusConflict
		errorCode = "already_exists"

	case errors.Is(err, domain.ErrInvalidSignature):
		httpStatus = http.StatusBadRequest
		errorCode = "invalid_signature"

	case errors.Is(err, domain.ErrSimulationForbidden):
		httpStatus = http.StatusForbidden
		errorCode = "forbidden"

	case errors.Is(err, domain.ErrProcessorUnavailable):
		httpStatus = http.StatusServiceUnavailable
		errorCode = "service_unavailable"
		log.Warn().Err(err).Str("method", method).Msg("Платёжный провайдер недоступен")

	case errors.Is(err, domain.ErrProcessorMisconfigured):
		httpStatus = http.StatusInternalServerError
		errorCode = "misconfigured"
		log.Error().Err(err).Str("method", method).Msg("Платёжный провайдер не сконфигурирован")

	default:
		httpStatus = http.StatusInternalServerError
		errorCode = "internal_error"
		log.Error().Err(err).Str("method", method).Msg("Непредвиденная ошибка")
	}

	c.JSON(httpStatus, ErrorResponse{
		Error:   errorCode,
		Message: err.Error(),
	})
}
