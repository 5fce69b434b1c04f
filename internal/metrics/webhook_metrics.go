package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/scriberly/billing-service/pkg/logger"
)

// WebhookMetrics интерфейс для метрик обработки вебхуков
type WebhookMetrics interface {
	IncEventReceived(eventType string)
	IncEventProcessed(eventType string)
	IncEventFailed(eventType string)
	IncEventRejected(reason string)
	ObservePaymentAmount(amount float64, currency string)
}

type webhookMetrics struct {
	log             *logger.Logger
	eventsReceived  *prometheus.CounterVec
	eventsProcessed *prometheus.CounterVec
	eventsRejected  *prometheus.CounterVec
	paymentsAmount  *prometheus.HistogramVec
}

// NewWebhookMetrics создает новые метрики вебхуков
func NewWebhookMetrics(registry *prometheus.Registry, log *logger.Logger) WebhookMetrics {
	eventsReceived := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_received_total",
			Help: "The total number of webhook events accepted for processing",
		},
		[]string{"event_type"},
	)

	eventsProcessed := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_processed_total",
			Help: "The total number of webhook events by processing outcome",
		},
		[]string{"event_type", "status"},
	)

	eventsRejected := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_rejected_total",
			Help: "The total number of webhook deliveries dropped before processing",
		},
		[]string{"reason"},
	)

	paymentsAmount := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payments_amount",
			Help:    "Payment amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
		[]string{"currency"},
	)

	return &webhookMetrics{
		log:             log,
		eventsReceived:  eventsReceived,
		eventsProcessed: eventsProcessed,
		eventsRejected:  eventsRejected,
		paymentsAmount:  paymentsAmount,
	}
}

// IncEventReceived увеличивает счетчик принятых событий
func (m *webhookMetrics) IncEventReceived(eventType string) {
	m.eventsReceived.WithLabelValues(eventType).Inc()
}

// IncEventProcessed увеличивает счетчик успешно обработанных событий
func (m *webhookMetrics) IncEventProcessed(eventType string) {
	m.eventsProcessed.WithLabelValues(eventType, "processed").Inc()
}

// IncEventFailed увеличивает счетчик событий, завершившихся ошибкой.
// К этому моменту шлюз уже получил подтверждение, поэтому счетчик
// служит основанием для алертинга.
func (m *webhookMetrics) IncEventFailed(eventType string) {
	m.eventsProcessed.WithLabelValues(eventType, "failed").Inc()
}

// IncEventRejected увеличивает счетчик отброшенных доставок
func (m *webhookMetrics) IncEventRejected(reason string) {
	m.eventsRejected.WithLabelValues(reason).Inc()
}

// ObservePaymentAmount записывает сумму платежа
func (m *webhookMetrics) ObservePaymentAmount(amount float64, currency string) {
	m.paymentsAmount.WithLabelValues(currency).Observe(amount)
}
