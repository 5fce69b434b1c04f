package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scriberly/billing-service/internal/api/rest/handlers"
	"github.com/scriberly/billing-service/internal/api/rest/middleware"
	"github.com/scriberly/billing-service/internal/metrics"
	"github.com/scriberly/billing-service/internal/repository"
	"github.com/scriberly/billing-service/pkg/logger"
)

// Deps зависимости HTTP-слоя
type Deps struct {
	Processor      handlers.WebhookProcessor
	Plans          repository.PlanRepository
	Payments       repository.PaymentRepository
	Templates      repository.TemplateRepository
	WebhookMetrics metrics.WebhookMetrics
	WebhookSecret  string
	Registry       *prometheus.Registry
	Log            *logger.Logger
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggerMiddleware(deps.Log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// Инициализация обработчиков
	planHandler := handlers.NewPlanHandler(deps.Plans, deps.Log)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments, deps.Log)
	templateHandler := handlers.NewTemplateHandler(deps.Templates, deps.Log)
	webhookHandler := handlers.NewWebhookHandler(deps.Processor, deps.WebhookSecret, deps.WebhookMetrics, deps.Log)

	v1 := r.Group("/api/v1")
	{
		// Каталог планов
		plans := v1.Group("/plans")
		{
			plans.GET("", planHandler.GetPlans)
			plans.GET("/:id", planHandler.GetPlan)
			plans.POST("", planHandler.CreatePlan)
		}

		// Журнал платежей
		payments := v1.Group("/payments")
		{
			payments.GET("", paymentHandler.GetPayments)
		}

		// Каталог шаблонов
		templates := v1.Group("/templates")
		{
			templates.GET("", templateHandler.GetTemplates)
		}
	}

	// Вебхуки на корневом уровне роутера
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/paystack", webhookHandler.HandlePaystackWebhook)
	}

	return r
}
