// Package config предоставляет загрузку конфигурации из переменных окружения.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config содержит полную конфигурацию координатора.
type Config struct {
	App        AppConfig
	HTTP       HTTPConfig
	Order      OrderConfig
	Processor  ProcessorConfig
	Payout     PayoutConfig
	Simulation SimulationConfig
	Identity   IdentityConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Kafka      KafkaConfig
	Jaeger     JaegerConfig
	Metrics    MetricsConfig
}

// AppConfig содержит общие настройки приложения.
type AppConfig struct {
	Name      string `env:"APP_NAME" envDefault:"checkout-coordinator"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// HTTPConfig — настройки HTTP сервера.
type HTTPConfig struct {
	Host         string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Addr возвращает адрес HTTP сервера.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OrderConfig — доменные настройки заказов.
type OrderConfig struct {
	// DefaultCurrency — валюта по умолчанию (ISO 4217, нижний регистр).
	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"usd"`

	// DefaultAmount — сумма заказа в минимальных единицах,
	// если клиент не передал amount при создании.
	DefaultAmount int64 `env:"DEFAULT_ORDER_AMOUNT" envDefault:"1000"`
}

// ProcessorConfig — настройки интеграции с платёжным процессором.
type ProcessorConfig struct {
	// SecretKey — приватный API ключ процессора. Его отсутствие НЕ падает
	// при старте: создание intent деградирует до ошибки Misconfigured.
	SecretKey string `env:"PROCESSOR_SECRET_KEY"`

	// WebhookSecret — общий секрет для проверки подписи webhook событий.
	WebhookSecret string `env:"PROCESSOR_WEBHOOK_SECRET"`

	// AllowUnverifiedWebhooks — явное разрешение degraded режима
	// (приём webhook без проверки подписи). Только для разработки.
	AllowUnverifiedWebhooks bool `env:"PROCESSOR_ALLOW_UNVERIFIED_WEBHOOKS" envDefault:"false"`

	// BaseURL — базовый URL API процессора.
	BaseURL string `env:"PROCESSOR_BASE_URL" envDefault:"https://api.processor.example.com"`

	// Timeout — таймаут одного вызова к процессору.
	Timeout time.Duration `env:"PROCESSOR_TIMEOUT" envDefault:"10s"`

	// WebhookTolerance — допустимый разброс timestamp подписи webhook.
	WebhookTolerance time.Duration `env:"PROCESSOR_WEBHOOK_TOLERANCE" envDefault:"5m"`
}

// WebhookDegraded возвращает true, если проверка подписи webhook
// невозможна (секрет не задан) и события будут приниматься без проверки.
func (c ProcessorConfig) WebhookDegraded() bool {
	return c.WebhookSecret == ""
}

// PayoutConfig — параметры расчёта выплат продавцу.
type PayoutConfig struct {
	// FeeRate — доля комиссии платформы от валовой суммы (0.05 = 5%).
	FeeRate float64 `env:"PLATFORM_FEE_RATE" envDefault:"0.05"`

	// Delay — задержка плановой даты выплаты от момента оплаты.
	Delay time.Duration `env:"PAYOUT_DELAY" envDefault:"336h"`

	// SellerID — идентификатор продавца витрины для ledger записей.
	SellerID string `env:"SELLER_ID" envDefault:"seller-1"`
}

// SimulationConfig — dev-симуляция успешной оплаты.
type SimulationConfig struct {
	// Enabled включает endpoint симуляции. НИКОГДА не включается в production
	// (Validate() это запрещает).
	Enabled bool `env:"DEV_SIMULATION_ENABLED" envDefault:"false"`

	// Secret — credential доступа к симуляции (заголовок X-Dev-Secret).
	// Пустое значение — симуляция доступна без credential (только dev).
	Secret string `env:"DEV_SIMULATION_SECRET"`
}

// IdentityConfig — валидация токенов внешнего identity provider.
type IdentityConfig struct {
	// JWTSecret — общий секрет верификации токенов (HS256).
	// Пустое значение отключает identity middleware (dev режим).
	JWTSecret string `env:"IDENTITY_JWT_SECRET"`

	// Issuer — ожидаемый издатель токена.
	Issuer string `env:"IDENTITY_ISSUER" envDefault:"identity.example.com"`
}

// Enabled возвращает true, если identity middleware активен.
func (c IdentityConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// RedisConfig — настройки подключения к Redis (rate limiting).
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Addr возвращает адрес Redis сервера.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig — настройки ограничения запросов.
type RateLimitConfig struct {
	Enabled       bool          `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RequestsLimit int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// KafkaConfig — настройки публикации событий оплаты.
// Пустой список брокеров отключает публикацию.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_PAYMENT_EVENTS_TOPIC" envDefault:"payment.events"`
}

// JaegerConfig — настройки трассировки Jaeger.
type JaegerConfig struct {
	Enabled  bool   `env:"JAEGER_ENABLED" envDefault:"false"`
	Host     string `env:"JAEGER_HOST" envDefault:"localhost"`
	OTLPPort int    `env:"JAEGER_OTLP_PORT" envDefault:"4317"`
}

// OTLPEndpoint возвращает OTLP gRPC endpoint для Jaeger.
func (c JaegerConfig) OTLPEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.OTLPPort)
}

// MetricsConfig — настройки Prometheus метрик.
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	Port    int  `env:"METRICS_PORT" envDefault:"9090"`
}

// Addr возвращает адрес для Metrics HTTP сервера.
func (c MetricsConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подхватывает .env файл, если он существует.
func Load() (*Config, error) {
	// Ошибка отсутствия .env игнорируется намеренно.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
// Degraded режим webhook и dev-симуляция запрещены в production.
func (c *Config) Validate() error {
	if c.Payout.FeeRate < 0 || c.Payout.FeeRate >= 1 {
		return fmt.Errorf("PLATFORM_FEE_RATE должен быть в диапазоне [0, 1): %v", c.Payout.FeeRate)
	}

	if c.IsProduction() {
		if c.Simulation.Enabled {
			return fmt.Errorf("DEV_SIMULATION_ENABLED запрещён в production")
		}
		if c.Processor.WebhookDegraded() && !c.Processor.AllowUnverifiedWebhooks {
			return fmt.Errorf("PROCESSOR_WEBHOOK_SECRET обязателен в production (либо явный PROCESSOR_ALLOW_UNVERIFIED_WEBHOOKS)")
		}
	}

	return nil
}

// IsDevelopment возвращает true в режиме разработки.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction возвращает true в production режиме.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
