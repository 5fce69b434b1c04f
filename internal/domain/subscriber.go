package domain

import (
	"time"
)

// SubscriberStatus статус подписки
type SubscriberStatus string

const (
	SubscriberStatusPending   SubscriberStatus = "Pending"
	SubscriberStatusActive    SubscriberStatus = "Active"
	SubscriberStatusCancelled SubscriberStatus = "Cancelled"
	SubscriberStatusExpired   SubscriberStatus = "Expired"
)

// PaymentFrequency периодичность оплаты плана
type PaymentFrequency string

const (
	FrequencyMonthly PaymentFrequency = "monthly"
	FrequencyYearly  PaymentFrequency = "yearly"
)

// Subscriber представляет запись подписки пользователя, привязанную
// к идентификатору подписки платежного шлюза.
type Subscriber struct {
	ID             int64            `db:"id" json:"id"`
	SubscriptionID string           `db:"subscription_id" json:"subscription_id"` // код подписки в Paystack
	UserID         int64            `db:"user_id" json:"user_id"`
	PlanID         int64            `db:"plan_id" json:"plan_id"`
	Status         SubscriberStatus `db:"status" json:"status"`
	ActiveUntil    time.Time        `db:"active_until" json:"active_until"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}
