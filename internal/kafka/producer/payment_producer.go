package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

const (
	TopicPaymentProcessed     = "payment.processed"
	TopicPaymentReferrerBonus = "payment.referrer_bonus"
)

// ReferrerBonusEvent событие реферального бонуса для Kafka. Его потребляет
// внешний сервис начисления реферальных вознаграждений.
type ReferrerBonusEvent struct {
	UserID     int64     `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	PlanID     int64     `json:"plan_id"`
	TotalPrice float64   `json:"total_price"`
	Gateway    string    `json:"gateway"`
	Timestamp  time.Time `json:"timestamp"`
}

// PaymentProcessedEvent событие успешной обработки платежа для Kafka.
// Потребители: нотификации и аналитика.
type PaymentProcessedEvent struct {
	UserID    int64     `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher интерфейс для публикации доменных событий платежей
type EventPublisher interface {
	PublishReferrerBonus(ctx context.Context, user *domain.User, planID int64, totalPrice float64, gateway string) error
	PublishPaymentProcessed(ctx context.Context, user *domain.User) error
	Close() error
}

type kafkaEventPublisher struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaEventPublisher создает новый продюсер доменных событий платежей
func NewKafkaEventPublisher(producer sarama.SyncProducer, log *logger.Logger) EventPublisher {
	return &kafkaEventPublisher{
		producer: producer,
		log:      log,
	}
}

// PublishReferrerBonus публикует событие реферального бонуса
func (p *kafkaEventPublisher) PublishReferrerBonus(ctx context.Context, user *domain.User, planID int64, totalPrice float64, gateway string) error {
	event := ReferrerBonusEvent{
		UserID:     user.ID,
		UserEmail:  user.Email,
		PlanID:     planID,
		TotalPrice: totalPrice,
		Gateway:    gateway,
		Timestamp:  time.Now(),
	}

	return p.publishEvent(TopicPaymentReferrerBonus, user.ID, event)
}

// PublishPaymentProcessed публикует событие об обработанном платеже
func (p *kafkaEventPublisher) PublishPaymentProcessed(ctx context.Context, user *domain.User) error {
	event := PaymentProcessedEvent{
		UserID:    user.ID,
		UserEmail: user.Email,
		Timestamp: time.Now(),
	}

	return p.publishEvent(TopicPaymentProcessed, user.ID, event)
}

// publishEvent сериализует событие и отправляет его в Kafka. Ключ
// сообщения — ID пользователя, чтобы события одного пользователя
// попадали в одну партицию и сохраняли порядок.
func (p *kafkaEventPublisher) publishEvent(topic string, userID int64, event interface{}) error {
	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(userID, 10)),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Info("Published event to topic %s: partition=%d offset=%d",
		topic, partition, offset)

	return nil
}

// Close закрывает продюсер
func (p *kafkaEventPublisher) Close() error {
	return p.producer.Close()
}
