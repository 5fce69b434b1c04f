package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scriberly/billing-service/internal/metrics"
	"github.com/scriberly/billing-service/internal/paystack"
	"github.com/scriberly/billing-service/pkg/logger"
)

// WebhookProcessor применяет проверенное вебхук-событие к данным.
type WebhookProcessor interface {
	HandleEvent(ctx context.Context, event paystack.Event) error
}

// WebhookHandler принимает вебхуки платежного шлюза.
type WebhookHandler struct {
	processor WebhookProcessor
	secret    string
	metrics   metrics.WebhookMetrics
	log       *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков.
func NewWebhookHandler(processor WebhookProcessor, secret string, webhookMetrics metrics.WebhookMetrics, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secret:    secret,
		metrics:   webhookMetrics,
		log:       log,
	}
}

// HandlePaystackWebhook обрабатывает вебхуки от Paystack. Запросы без
// подписи или с неверной подписью молча отбрасываются без тела ответа:
// шлюзу незачем знать, почему доставка не принята. Подтверждение
// отправляется до обработки события, поэтому ошибки обработки шлюзу
// также не видны.
func (h *WebhookHandler) HandlePaystackWebhook(c *gin.Context) {
	signature := c.GetHeader(paystack.HeaderSignature)
	if signature == "" {
		h.log.Warn("Dropping webhook delivery without signature header from %s", c.ClientIP())
		h.metrics.IncEventRejected("missing_signature")
		c.Abort()
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Error("Failed to read webhook body: %v", err)
		h.metrics.IncEventRejected("body_read_failed")
		c.Abort()
		return
	}

	if !paystack.VerifySignature(body, signature, h.secret) {
		h.log.Warn("Dropping webhook delivery with invalid signature from %s", c.ClientIP())
		h.metrics.IncEventRejected("invalid_signature")
		c.Abort()
		return
	}

	// Подпись верна: шлюз получает подтверждение немедленно, до разбора
	// и обработки события
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	event, err := paystack.ParseEvent(body)
	if err != nil {
		h.log.Error("Failed to parse webhook event after acknowledgement: %v", err)
		h.metrics.IncEventRejected("malformed_payload")
		return
	}

	if err := h.processor.HandleEvent(c.Request.Context(), event); err != nil {
		// Уже залогировано и учтено сервисом; шлюзу не сообщаем
		return
	}
}
