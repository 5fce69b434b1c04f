package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scriberly/billing-service/internal/api/rest"
	"github.com/scriberly/billing-service/internal/config"
	"github.com/scriberly/billing-service/internal/kafka"
	"github.com/scriberly/billing-service/internal/kafka/producer"
	"github.com/scriberly/billing-service/internal/metrics"
	"github.com/scriberly/billing-service/internal/repository"
	"github.com/scriberly/billing-service/internal/service"
	"github.com/scriberly/billing-service/pkg/logger"
)

var log *logger.Logger

func init() {
	logLevel := logger.INFO
	if os.Getenv("DEBUG") == "true" {
		logLevel = logger.DEBUG
	}
	log = logger.New(logLevel)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	// Инициализация Prometheus
	promRegistry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(promRegistry, log)
	systemMetrics := metrics.NewSystemMetrics(promRegistry, log)

	// Запускаем сбор системных метрик
	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	// Подключение к базе данных
	db, err := repository.NewPostgresDB(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Подключение к Redis для кеша каталога планов
	planCache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis: %v", err)
	}
	defer planCache.Close()

	// Инициализация Kafka продюсера
	kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers)
	saramaConfig := kafka.NewSaramaConfig(kafkaConfig)

	kafkaProducer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, saramaConfig)
	if err != nil {
		log.Fatal("Failed to create Kafka producer: %v", err)
	}

	publisher := producer.NewKafkaEventPublisher(kafkaProducer, log)
	defer publisher.Close()

	// Сборка репозиториев и сервиса обработки вебхуков
	subscriberRepo := repository.NewPostgresSubscriberRepository(db, log)
	planRepo := repository.NewCachedPlanRepository(repository.NewPostgresPlanRepository(db, log), planCache, log)
	userRepo := repository.NewPostgresUserRepository(db, log)
	paymentRepo := repository.NewPostgresPaymentRepository(db, log)
	templateRepo := repository.NewPostgresTemplateRepository(db, log)
	txManager := repository.NewSqlxTxManager(db, log)

	webhookService := service.NewWebhookService(
		subscriberRepo,
		planRepo,
		userRepo,
		paymentRepo,
		txManager,
		publisher,
		service.NewLoggingRoleSyncer(log),
		webhookMetrics,
		service.Config{
			TaxRate:         cfg.Payment.TaxRate,
			Currency:        cfg.Payment.Currency,
			ReferralEnabled: cfg.Referral.Enabled,
			ReferralPolicy:  cfg.Referral.Policy,
		},
		log,
	)

	// Установка режима Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Настройка маршрутизатора
	router := rest.SetupRouter(rest.Deps{
		Processor:      webhookService,
		Plans:          planRepo,
		Payments:       paymentRepo,
		Templates:      templateRepo,
		WebhookMetrics: webhookMetrics,
		WebhookSecret:  cfg.Paystack.WebhookSecret,
		Registry:       promRegistry,
		Log:            log,
	})

	// Создание и запуск HTTP сервера
	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownTimeout := time.Duration(cfg.App.ShutdownTimeout) * time.Second
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
