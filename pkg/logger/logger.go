// Package logger предоставляет структурированное логирование на базе zerolog.
// JSON формат для production, pretty-print для локальной разработки.
// Все сообщения логов пишутся на русском языке.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// log — глобальный экземпляр логгера.
// Инициализируется в init() и перенастраивается через Init().
var log zerolog.Logger

// Config содержит настройки логгера.
type Config struct {
	// Level — минимальный уровень логирования: "debug", "info", "warn", "error".
	// По умолчанию "info".
	Level string

	// Pretty включает цветной консольный вывод для разработки.
	// При Pretty=false логи пишутся в JSON (production).
	Pretty bool

	// Output — writer для вывода. По умолчанию os.Stdout.
	Output io.Writer
}

// init настраивает логгер из переменных окружения при импорте пакета,
// чтобы логирование работало до явного вызова Init() в main.
func init() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	Init(Config{
		Level:  level,
		Pretty: strings.ToLower(os.Getenv("LOG_PRETTY")) == "true",
	})
}

// Init инициализирует глобальный логгер с заданной конфигурацией.
// Вызывается в начале main после загрузки конфигурации.
func Init(cfg Config) {
	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}

	// ConsoleWriter форматирует логи в читаемый вид с цветами.
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLevel(cfg.Level)

	// Базовые поля каждой записи: timestamp и место вызова (файл:строка).
	log = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
}

// parseLevel преобразует строку в zerolog.Level.
// Неизвестный уровень трактуется как info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug создает событие лога уровня debug.
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info создает событие лога уровня info.
// Пример: logger.Info().Int64("order_id", id).Msg("Заказ создан")
func Info() *zerolog.Event {
	return log.Info()
}

// Warn создает событие лога уровня warn.
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error создает событие лога уровня error.
// Пример: logger.Error().Err(err).Msg("Ошибка обработки события")
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal создает событие лога уровня fatal и завершает процесс.
// ВНИМАНИЕ: после вызова Msg() приложение завершится с кодом 1.
func Fatal() *zerolog.Event {
	return log.Fatal()
}

// With создает новый логгер с дополнительными полями.
//
//	svcLog := logger.With().Str("component", "dispatcher").Logger()
func With() zerolog.Context {
	return log.With()
}

// Logger возвращает глобальный экземпляр zerolog.Logger.
func Logger() zerolog.Logger {
	return log
}

// SetGlobalLogger подменяет глобальный логгер.
// Используется в тестах для перехвата вывода.
func SetGlobalLogger(l zerolog.Logger) {
	log = l
}
