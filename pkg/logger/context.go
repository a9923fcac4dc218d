package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// Приватный тип ключа контекста — защита от коллизий с другими пакетами.
type ctxKey string

const (
	// traceIDKey — ключ для trace_id. Trace ID присваивается каждому
	// входящему запросу и связывает все записи логов этого запроса.
	traceIDKey ctxKey = "trace_id"

	// loggerKey — ключ для настроенного логгера в контексте.
	loggerKey ctxKey = "logger"
)

// WithTraceID добавляет trace_id в контекст.
// Генерируется на входе в систему (HTTP middleware).
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext извлекает trace_id из контекста.
// Возвращает пустую строку, если trace_id не установлен.
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithLogger добавляет настроенный логгер в контекст.
//
//	log := logger.With().Str("component", "webhook").Logger()
//	ctx = logger.WithLogger(ctx, log)
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext извлекает логгер из контекста и обогащает его trace_id,
// если тот присутствует. Если логгер не был добавлен явно — возвращает
// глобальный. Основной способ получения логгера в обработчиках и сервисах.
func FromContext(ctx context.Context) zerolog.Logger {
	var l zerolog.Logger
	if ctxLogger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		l = ctxLogger
	} else {
		l = log
	}

	if traceID := TraceIDFromContext(ctx); traceID != "" {
		l = l.With().Str("trace_id", traceID).Logger()
	}

	return l
}

// Ctx возвращает указатель на логгер из контекста.
// Альтернативная форма, совместимая с zerolog.Ctx().
func Ctx(ctx context.Context) *zerolog.Logger {
	l := FromContext(ctx)
	return &l
}
