// Package dispatcher применяет аутентифицированные платёжные события
// к состоянию координатора. Это единственное место, где события процессора
// превращаются в переходы заказов, платежей и записи ledger.
package dispatcher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/checkout-coordinator/internal/domain"
	"example.com/checkout-coordinator/internal/events"
	"example.com/checkout-coordinator/internal/store"
	"example.com/checkout-coordinator/pkg/logger"
	"example.com/checkout-coordinator/pkg/metrics"
)

// Результаты обработки события для метрик.
const (
	outcomeApplied       = "applied"
	outcomeDuplicate     = "duplicate"
	outcomeUnknownIntent = "unknown_intent"
	outcomeUnknownType   = "unknown_type"
)

// Config — параметры распределения выручки.
type Config struct {
	FeeRate     float64       // Доля комиссии платформы, [0, 1)
	PayoutDelay time.Duration // Задержка плановой выплаты от момента оплаты
	SellerID    string        // Получатель выплат (единственный продавец)
}

// Dispatcher — машина состояний платёжных событий.
// Обработка идемпотентна: сколько бы раз процессор ни доставил одно и то же
// событие, состояние меняется не более одного раза.
type Dispatcher struct {
	cfg       Config
	orders    *store.OrderStore
	payments  *store.PaymentRegistry
	ledger    *store.Ledger
	publisher *events.Publisher
	now       func() time.Time
}

// New создаёт диспетчер событий.
func New(cfg Config, orders *store.OrderStore, payments *store.PaymentRegistry, ledger *store.Ledger, publisher *events.Publisher) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		orders:    orders,
		payments:  payments,
		ledger:    ledger,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetClock подменяет источник времени. Только для тестов.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Handle применяет событие к состоянию. Событие уже аутентифицировано:
// любые проблемы здесь — аномалии, которые логируются и подтверждаются,
// а не возвращаются процессору как ошибки доставки.
func (d *Dispatcher) Handle(ctx context.Context, ev *domain.WebhookEvent) {
	log := logger.Ctx(ctx).With().
		Str("event_id", ev.ID).
		Str("event_type", string(ev.Type)).
		Str("intent_id", ev.IntentID).
		Logger()

	switch ev.Type {
	case domain.EventPaymentSucceeded:
		d.applyPaymentSucceeded(ctx, ev, log)
	case domain.EventPaymentFailed:
		d.applyPaymentFailed(ctx, ev, log)
	default:
		log.Warn().Msg("событие неизвестного типа, состояние не изменено")
		metrics.RecordWebhookEvent(string(ev.Type), outcomeUnknownType)
	}
}

func (d *Dispatcher) applyPaymentSucceeded(ctx context.Context, ev *domain.WebhookEvent, log zerolog.Logger) {
	rec, changed, err := d.payments.MarkSucceeded(ev.IntentID)
	if err != nil {
		// Intent нам неизвестен: либо чужое окружение, либо рассинхрон.
		log.Warn().Msg("событие по неизвестному intent, подтверждаем без изменений")
		metrics.RecordWebhookEvent(string(ev.Type), outcomeUnknownIntent)
		return
	}

	if !changed {
		log.Info().Msg("повторная доставка события, платёж уже в терминальном статусе")
		metrics.RecordWebhookEvent(string(ev.Type), outcomeDuplicate)
		return
	}

	d.settleOrder(ctx, rec, log)
	metrics.RecordWebhookEvent(string(ev.Type), outcomeApplied)
}

func (d *Dispatcher) applyPaymentFailed(ctx context.Context, ev *domain.WebhookEvent, log zerolog.Logger) {
	rec, changed, err := d.payments.MarkFailed(ev.IntentID)
	if err != nil {
		log.Warn().Msg("событие по неизвестному intent, подтверждаем без изменений")
		metrics.RecordWebhookEvent(string(ev.Type), outcomeUnknownIntent)
		return
	}

	if !changed {
		log.Info().Msg("повторная доставка события, платёж уже в терминальном статусе")
		metrics.RecordWebhookEvent(string(ev.Type), outcomeDuplicate)
		return
	}

	log.Info().Int64("order_id", rec.OrderID).Msg("платёж отклонён процессором, заказ остаётся pending")
	d.publisher.PaymentFailed(ctx, events.PaymentFailedEvent{
		OrderID:  rec.OrderID,
		IntentID: rec.ID,
	})
	metrics.RecordWebhookEvent(string(ev.Type), outcomeApplied)
}

// settleOrder переводит заказ в paid и создаёт запись ledger.
// MarkPaid срабатывает не более одного раза на заказ, поэтому запись
// ledger тоже создаётся не более одного раза — без глобальной блокировки.
func (d *Dispatcher) settleOrder(ctx context.Context, rec *domain.PaymentRecord, log zerolog.Logger) {
	order, err := d.orders.MarkPaid(rec.OrderID)
	if err != nil {
		// Платёж прошёл, но заказ оплатить нельзя (отменён или уже оплачен
		// по другому intent): деньги взяты, заказ не исполняется — ситуация
		// для ручного разбора, событие при этом подтверждаем.
		log.Error().Err(err).
			Int64("order_id", rec.OrderID).
			Msg("успешный платёж по неоплачиваемому заказу, требуется ручной разбор")
		return
	}

	fee := domain.PlatformFee(order.Amount, d.cfg.FeeRate)
	net := order.Amount - fee
	paidAt := d.now()
	if order.PaidAt != nil {
		paidAt = *order.PaidAt
	}

	entry := d.ledger.Append(domain.LedgerEntry{
		SellerID:            d.cfg.SellerID,
		OrderID:             order.ID,
		AmountGross:         order.Amount,
		PlatformFee:         fee,
		SellerNet:           net,
		Currency:            order.Currency,
		PayoutStatus:        domain.PayoutStatusPending,
		ScheduledPayoutDate: paidAt.Add(d.cfg.PayoutDelay),
	})
	metrics.LedgerEntriesTotal.Inc()

	log.Info().
		Int64("order_id", order.ID).
		Str("ledger_entry_id", entry.ID).
		Int64("amount_gross", entry.AmountGross).
		Int64("platform_fee", entry.PlatformFee).
		Int64("seller_net", entry.SellerNet).
		Msg("заказ оплачен, выплата продавцу запланирована")

	d.publisher.OrderPaid(ctx, events.OrderPaidEvent{
		OrderID:     order.ID,
		IntentID:    rec.ID,
		AmountGross: entry.AmountGross,
		PlatformFee: entry.PlatformFee,
		SellerNet:   entry.SellerNet,
		Currency:    entry.Currency,
	})
}

// SimulatePayment — dev-путь оплаты без внешнего процессора: регистрирует
// синтетический intent для заказа и прогоняет его через обычный поток
// payment.succeeded. Ошибки, в отличие от Handle, возвращаются вызывающему.
func (d *Dispatcher) SimulatePayment(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := d.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanPay() {
		return nil, domain.ErrOrderNotPayable
	}

	intentID := "sim_" + uuid.NewString()
	if _, err := d.payments.Register(intentID, orderID); err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Int64("order_id", orderID).
		Str("intent_id", intentID).
		Msg("симуляция оплаты заказа")

	d.Handle(ctx, &domain.WebhookEvent{
		ID:       "evt_" + uuid.NewString(),
		Type:     domain.EventPaymentSucceeded,
		IntentID: intentID,
	})

	return d.orders.Get(orderID)
}
