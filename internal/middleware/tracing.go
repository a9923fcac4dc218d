// Package middleware содержит HTTP middleware координатора.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/checkout-coordinator/pkg/logger"
)

// HTTP заголовки трассировки.
const (
	HeaderTraceID   = "X-Trace-ID"
	HeaderRequestID = "X-Request-ID" // Алиас для Trace ID
)

// Tracing присваивает каждому запросу trace_id и пишет access-лог.
// Trace_id берётся из заголовка входящего запроса или генерируется,
// попадает в контекст и возвращается клиенту в заголовке ответа.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = c.GetHeader(HeaderRequestID)
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, traceID)
		c.Set("trace_id", traceID)

		log := logger.FromContext(ctx)
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Msg("Входящий запрос")

		c.Next()

		statusCode := c.Writer.Status()

		logEvent := log.Info()
		if statusCode >= 400 {
			logEvent = log.Warn()
		}
		if statusCode >= 500 {
			logEvent = log.Error()
		}

		logEvent.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", statusCode).
			Dur("duration", time.Since(start)).
			Msg("Запрос завершён")
	}
}
