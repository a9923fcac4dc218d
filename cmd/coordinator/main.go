// Package main — точка входа координатора оплаты заказов.
// Координатор ведёт жизненный цикл заказов, выдаёт платёжные намерения
// через внешний процессор, принимает его webhook события и ведёт журнал
// выплат продавцу.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"example.com/checkout-coordinator/internal/dispatcher"
	"example.com/checkout-coordinator/internal/events"
	"example.com/checkout-coordinator/internal/handler"
	"example.com/checkout-coordinator/internal/middleware"
	"example.com/checkout-coordinator/internal/processor"
	"example.com/checkout-coordinator/internal/store"
	"example.com/checkout-coordinator/pkg/circuitbreaker"
	"example.com/checkout-coordinator/pkg/config"
	"example.com/checkout-coordinator/pkg/healthcheck"
	"example.com/checkout-coordinator/pkg/kafka"
	"example.com/checkout-coordinator/pkg/logger"
	"example.com/checkout-coordinator/pkg/metrics"
	"example.com/checkout-coordinator/pkg/tracing"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Ошибка загрузки конфигурации")
	}

	// Инициализируем логгер
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Pretty: cfg.App.LogPretty,
	})

	logger.Info().
		Str("service", cfg.App.Name).
		Str("env", cfg.App.Env).
		Msg("Запуск координатора оплаты")

	// Предупреждения о degraded режимах — сервис стартует, но о проблеме
	// должно быть видно в логах сразу.
	if cfg.Processor.SecretKey == "" {
		logger.Warn().Msg("PROCESSOR_SECRET_KEY не задан: создание платёжных намерений будет отвечать ошибкой")
	}
	if cfg.Processor.WebhookDegraded() {
		logger.Warn().Msg("PROCESSOR_WEBHOOK_SECRET не задан: webhook события принимаются БЕЗ проверки подписи")
	}
	if cfg.Simulation.Enabled {
		logger.Warn().Msg("Dev-симуляция оплаты включена")
	}

	// === Observability: Metrics + Tracing ===

	// Redis опционален: нужен только для rate limiting
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("Ошибка закрытия Redis")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("Не удалось подключиться к Redis")
		}
		cancel()
		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("Подключено к Redis")
	}

	// Запускаем HTTP сервер для Prometheus метрик
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		var opts []metrics.Option
		if redisClient != nil {
			opts = append(opts, metrics.WithReadinessCheck(healthcheck.Composite(
				func(ctx context.Context) error { return healthcheck.CheckRedis(ctx, redisClient) },
			)))
		}
		metricsServer = metrics.NewServer(cfg.Metrics.Addr(), cfg.App.Name, opts...)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Ошибка Metrics Server")
			}
		}()
	}

	// Инициализируем distributed tracing (Jaeger)
	shutdownTracing, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.App.Name,
		Environment:    cfg.App.Env,
		JaegerEndpoint: cfg.Jaeger.OTLPEndpoint(),
		Enabled:        cfg.Jaeger.Enabled,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Не удалось инициализировать tracing")
	}

	// === Инициализация зависимостей ===

	// Kafka producer опционален: без брокеров события просто не публикуются
	var sender events.Sender
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.Kafka.Brokers})
		if err != nil {
			logger.Fatal().Err(err).Msg("Ошибка создания Kafka Producer")
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("Ошибка закрытия Kafka Producer")
			}
		}()
		sender = producer
	} else {
		logger.Info().Msg("KAFKA_BROKERS не заданы, публикация событий отключена")
	}
	publisher := events.NewPublisher(sender)

	// Хранилища состояния
	orders := store.NewOrderStore()
	payments := store.NewPaymentRegistry()
	ledger := store.NewLedger()

	// Клиент платёжного процессора за circuit breaker
	breaker := circuitbreaker.New("payment-processor")
	processorClient := processor.NewClient(
		cfg.Processor.BaseURL,
		cfg.Processor.SecretKey,
		cfg.Processor.Timeout,
		breaker,
	)

	// Верификатор подписи webhook
	verifier := processor.NewWebhookVerifier(cfg.Processor.WebhookSecret, cfg.Processor.WebhookTolerance)

	// Диспетчер платёжных событий
	disp := dispatcher.New(dispatcher.Config{
		FeeRate:     cfg.Payout.FeeRate,
		PayoutDelay: cfg.Payout.Delay,
		SellerID:    cfg.Payout.SellerID,
	}, orders, payments, ledger, publisher)

	// === Инициализация middleware ===

	var rateLimitMW *middleware.RateLimit
	if cfg.RateLimit.Enabled {
		rateLimitMW = middleware.NewRateLimit(middleware.RateLimitConfig{
			Redis:  redisClient,
			Limit:  cfg.RateLimit.RequestsLimit,
			Window: cfg.RateLimit.Window,
		})
		logger.Info().
			Int("limit", cfg.RateLimit.RequestsLimit).
			Dur("window", cfg.RateLimit.Window).
			Msg("Rate limiting включён")
	}

	var identityMW *middleware.Identity
	if cfg.Identity.Enabled() {
		identityMW = middleware.NewIdentity(cfg.Identity.JWTSecret, cfg.Identity.Issuer)
		logger.Info().Str("issuer", cfg.Identity.Issuer).Msg("Identity middleware включён")
	} else {
		logger.Warn().Msg("IDENTITY_JWT_SECRET не задан, API доступен без аутентификации")
	}

	// === Настройка роутера ===

	var simHandler *handler.SimulationHandler
	if cfg.Simulation.Enabled {
		simHandler = handler.NewSimulationHandler(disp, payments, cfg.Simulation.Secret)
	}

	router := handler.NewRouter(handler.RouterConfig{
		OrderHandler:      handler.NewOrderHandler(orders, payments, cfg.Order.DefaultAmount, cfg.Order.DefaultCurrency),
		PaymentHandler:    handler.NewPaymentHandler(processorClient, orders, payments),
		WebhookHandler:    handler.NewWebhookHandler(verifier, disp),
		LedgerHandler:     handler.NewLedgerHandler(ledger),
		SimulationHandler: simHandler,
		IdentityMW:        identityMW,
		RateLimitMW:       rateLimitMW,
		ServiceName:       cfg.App.Name,
		Debug:             cfg.IsDevelopment(),
	})

	// === HTTP сервер ===

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info().
			Str("addr", cfg.HTTP.Addr()).
			Msg("HTTP сервер запущен")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Ошибка HTTP сервера")
		}
	}()

	// === Graceful Shutdown ===

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Получен сигнал завершения, останавливаем сервер...")

	// Даём 30 секунд на завершение текущих запросов
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Ошибка при остановке сервера")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Ошибка остановки Metrics Server")
		}
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("Ошибка остановки Tracing")
		}
	}

	logger.Info().Msg("Координатор остановлен")
}
