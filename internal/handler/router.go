package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"example.com/checkout-coordinator/internal/middleware"
	"example.com/checkout-coordinator/pkg/metrics"
)

// ReadinessChecker — функция проверки готовности сервиса.
type ReadinessChecker func(ctx context.Context) error

// Router — конфигурация HTTP роутера координатора.
type Router struct {
	engine         *gin.Engine
	orderHandler   *OrderHandler
	paymentHandler *PaymentHandler
	webhookHandler *WebhookHandler
	ledgerHandler  *LedgerHandler
	simHandler     *SimulationHandler // nil — симуляция выключена
	identityMW     *middleware.Identity
	rateLimitMW    *middleware.RateLimit
	readinessCheck ReadinessChecker
	serviceName    string
}

// RouterConfig — параметры для создания роутера.
type RouterConfig struct {
	OrderHandler   *OrderHandler
	PaymentHandler *PaymentHandler
	WebhookHandler *WebhookHandler
	LedgerHandler  *LedgerHandler

	// SimulationHandler подключается только при включённой симуляции.
	// nil означает, что маршрут /testing/simulate не регистрируется
	// и отвечает 404 наравне с любым неизвестным путём.
	SimulationHandler *SimulationHandler

	IdentityMW     *middleware.Identity  // nil — аутентификация выключена
	RateLimitMW    *middleware.RateLimit // nil — rate limiting выключен
	ReadinessCheck ReadinessChecker      // опциональная проверка для /readyz
	ServiceName    string
	Debug          bool // Режим отладки Gin
}

// NewRouter создаёт и настраивает HTTP роутер.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.Tracing())

	// CORS — обработка cross-origin запросов
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Security headers — защита от clickjacking и MIME-sniffing
	engine.Use(middleware.SecurityHeaders())

	// OpenTelemetry tracing — создаёт spans для Jaeger
	engine.Use(otelgin.Middleware(cfg.ServiceName))

	// Prometheus метрики — requests_total, request_duration_seconds
	engine.Use(metrics.GinMetricsMiddleware(cfg.ServiceName))

	r := &Router{
		engine:         engine,
		orderHandler:   cfg.OrderHandler,
		paymentHandler: cfg.PaymentHandler,
		webhookHandler: cfg.WebhookHandler,
		ledgerHandler:  cfg.LedgerHandler,
		simHandler:     cfg.SimulationHandler,
		identityMW:     cfg.IdentityMW,
		rateLimitMW:    cfg.RateLimitMW,
		readinessCheck: cfg.ReadinessCheck,
		serviceName:    cfg.ServiceName,
	}

	r.setupRoutes()
	return r
}

// setupRoutes настраивает все маршруты API.
func (r *Router) setupRoutes() {
	// Health endpoints (без rate limiting и auth)
	r.engine.GET("/health", r.healthCheck) // legacy, оставлен для совместимости
	r.engine.GET("/healthz", r.livenessCheck)
	r.engine.GET("/readyz", r.readinessCheckHandler)

	v1 := r.engine.Group("/api/v1")

	if r.rateLimitMW != nil {
		v1.Use(r.rateLimitMW.Handle())
	}

	// === Webhook (аутентификация подписью, не токеном) ===
	v1.POST("/webhook", r.webhookHandler.HandleWebhook)

	// === Order routes ===
	orders := v1.Group("/orders")
	if r.identityMW != nil {
		orders.Use(r.identityMW.Handle())
	}
	{
		orders.POST("", r.orderHandler.CreateOrder)
		orders.GET("/:id", r.orderHandler.GetOrder)
		orders.POST("/:id/cancel", r.orderHandler.CancelOrder)
		orders.POST("/:id/confirm-received", r.orderHandler.ConfirmReceived)
		orders.POST("/:id/feedback", r.orderHandler.AddFeedback)
	}

	// === Payment routes ===
	payments := v1.Group("/payments")
	if r.identityMW != nil {
		payments.Use(r.identityMW.Handle())
	}
	{
		payments.POST("/create-intent", r.paymentHandler.CreateIntent)
	}

	// === Ledger (чтение) ===
	ledger := v1.Group("/ledger")
	if r.identityMW != nil {
		ledger.Use(r.identityMW.Handle())
	}
	{
		ledger.GET("", r.ledgerHandler.ListLedger)
	}

	// === Dev симуляция (только при включённой конфигурации) ===
	if r.simHandler != nil {
		v1.POST("/testing/simulate", r.simHandler.SimulatePayment)
	}
}

// Engine возвращает Gin engine для запуска сервера.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// healthCheck — проверка работоспособности сервиса (legacy).
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": r.serviceName,
	})
}

// livenessCheck — liveness probe: процесс жив, сервер отвечает.
func (r *Router) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// readinessCheckHandler — readiness probe: зависимости доступны.
func (r *Router) readinessCheckHandler(c *gin.Context) {
	if r.readinessCheck == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := r.readinessCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
