package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/internal/repository"
)

func setupPlanRouter(t *testing.T) (*gin.Engine, *repository.InMemoryPlanRepository) {
	t.Helper()

	plans := repository.NewInMemoryPlanRepository()
	handler := NewPlanHandler(plans, testLogger())

	r := gin.New()
	r.GET("/api/v1/plans", handler.GetPlans)
	r.GET("/api/v1/plans/:id", handler.GetPlan)
	r.POST("/api/v1/plans", handler.CreatePlan)
	return r, plans
}

func performJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePlan(t *testing.T) {
	r, _ := setupPlanRouter(t)

	w := performJSON(r, http.MethodPost, "/api/v1/plans", domain.PlanRequest{
		PlanName:         "Premium",
		Price:            250,
		Currency:         "NGN",
		PaymentFrequency: "yearly",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.SubscriptionPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Premium", created.PlanName)
	assert.Equal(t, domain.FrequencyYearly, created.PaymentFrequency)
}

func TestCreatePlan_ValidationFailure(t *testing.T) {
	r, _ := setupPlanRouter(t)

	tests := []struct {
		name    string
		request domain.PlanRequest
	}{
		{
			name: "bad currency code",
			request: domain.PlanRequest{
				PlanName:         "Premium",
				Price:            250,
				Currency:         "NAIRA",
				PaymentFrequency: "yearly",
			},
		},
		{
			name: "unknown frequency",
			request: domain.PlanRequest{
				PlanName:         "Premium",
				Price:            250,
				Currency:         "NGN",
				PaymentFrequency: "weekly",
			},
		},
		{
			name: "missing name",
			request: domain.PlanRequest{
				Price:            250,
				Currency:         "NGN",
				PaymentFrequency: "monthly",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(r, http.MethodPost, "/api/v1/plans", tt.request)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestGetPlan(t *testing.T) {
	r, plans := setupPlanRouter(t)

	seeded := &domain.SubscriptionPlan{
		PlanName:         "Professional",
		Price:            100,
		Currency:         "NGN",
		PaymentFrequency: domain.FrequencyMonthly,
	}
	require.NoError(t, plans.Create(context.Background(), seeded))

	w := performJSON(r, http.MethodGet, "/api/v1/plans/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.SubscriptionPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Professional", got.PlanName)
}

func TestGetPlan_NotFound(t *testing.T) {
	r, _ := setupPlanRouter(t)

	w := performJSON(r, http.MethodGet, "/api/v1/plans/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPlan_BadID(t *testing.T) {
	r, _ := setupPlanRouter(t)

	w := performJSON(r, http.MethodGet, "/api/v1/plans/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPlans(t *testing.T) {
	r, plans := setupPlanRouter(t)

	for _, name := range []string{"Free", "Professional"} {
		require.NoError(t, plans.Create(context.Background(), &domain.SubscriptionPlan{
			PlanName:         name,
			Currency:         "NGN",
			PaymentFrequency: domain.FrequencyMonthly,
		}))
	}

	w := performJSON(r, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.SubscriptionPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}
