package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriberly/billing-service/internal/metrics"
	"github.com/scriberly/billing-service/internal/paystack"
	"github.com/scriberly/billing-service/pkg/logger"
)

const testSecret = "sk_test_secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProcessor struct {
	events []paystack.Event
	err    error
}

func (p *fakeProcessor) HandleEvent(ctx context.Context, event paystack.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func testLogger() *logger.Logger {
	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)
	return log
}

func setupWebhookRouter(t *testing.T, processor *fakeProcessor) *gin.Engine {
	t.Helper()

	log := testLogger()
	handler := NewWebhookHandler(processor, testSecret, metrics.NewWebhookMetrics(prometheus.NewRegistry(), log), log)

	r := gin.New()
	r.POST("/webhooks/paystack", handler.HandlePaystackWebhook)
	return r
}

func postWebhook(r http.Handler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(paystack.HeaderSignature, signature)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlePaystackWebhook_ValidSignature(t *testing.T) {
	processor := &fakeProcessor{}
	r := setupWebhookRouter(t, processor)

	body := []byte(`{"event":"charge.success","data":{"subscription_code":"SUB_1","reference":"ref_1"}}`)
	w := postWebhook(r, body, paystack.ComputeSignature(body, testSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	require.Len(t, processor.events, 1)
	assert.Equal(t, paystack.EventChargeSuccess, processor.events[0].Kind)
	assert.Equal(t, "SUB_1", processor.events[0].Data.SubscriptionCode)
}

func TestHandlePaystackWebhook_MissingSignatureDroppedSilently(t *testing.T) {
	processor := &fakeProcessor{}
	r := setupWebhookRouter(t, processor)

	w := postWebhook(r, []byte(`{"event":"charge.success"}`), "")

	assert.Empty(t, w.Body.String())
	assert.Empty(t, processor.events)
}

func TestHandlePaystackWebhook_InvalidSignatureDroppedSilently(t *testing.T) {
	processor := &fakeProcessor{}
	r := setupWebhookRouter(t, processor)

	body := []byte(`{"event":"charge.success"}`)
	w := postWebhook(r, body, "deadbeef")

	assert.Empty(t, w.Body.String())
	assert.Empty(t, processor.events)
}

func TestHandlePaystackWebhook_SignatureOverDifferentBodyRejected(t *testing.T) {
	processor := &fakeProcessor{}
	r := setupWebhookRouter(t, processor)

	signature := paystack.ComputeSignature([]byte(`{"event":"charge.success"}`), testSecret)
	w := postWebhook(r, []byte(`{"event":"subscription.disable"}`), signature)

	assert.Empty(t, w.Body.String())
	assert.Empty(t, processor.events)
}

func TestHandlePaystackWebhook_MalformedPayloadAfterAck(t *testing.T) {
	processor := &fakeProcessor{}
	r := setupWebhookRouter(t, processor)

	body := []byte(`{not json`)
	w := postWebhook(r, body, paystack.ComputeSignature(body, testSecret))

	// Подпись верна, поэтому шлюз получает подтверждение,
	// но до обработчика событие не доходит
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, processor.events)
}

func TestHandlePaystackWebhook_ProcessingErrorHiddenFromGateway(t *testing.T) {
	processor := &fakeProcessor{err: assert.AnError}
	r := setupWebhookRouter(t, processor)

	body := []byte(`{"event":"subscription.disable","data":{"subscription_code":"SUB_1"}}`)
	w := postWebhook(r, body, paystack.ComputeSignature(body, testSecret))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	require.Len(t, processor.events, 1)
}
