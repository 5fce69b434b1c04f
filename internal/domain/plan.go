package domain

import (
	"time"
)

// SubscriptionPlan представляет тарифный план из каталога. Каталожная
// запись неизменяемая: история платежей хранит снимок грантов плана
// на момент оплаты, а не ссылку на план.
type SubscriptionPlan struct {
	ID               int64            `db:"id" json:"id"`
	PlanName         string           `db:"plan_name" json:"plan_name"`
	Price            float64          `db:"price" json:"price"`
	Currency         string           `db:"currency" json:"currency"`
	PaymentFrequency PaymentFrequency `db:"payment_frequency" json:"payment_frequency"`
	Characters       *int64           `db:"characters" json:"characters,omitempty"`
	Minutes          *int64           `db:"minutes" json:"minutes,omitempty"`
	TeamMembers      *int64           `db:"team_members" json:"team_members,omitempty"`
	CreditGrant
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Duration возвращает длительность оплаченного периода. Все частоты,
// кроме monthly, трактуются как годовые.
func (p *SubscriptionPlan) Duration() time.Duration {
	days := 365
	if p.PaymentFrequency == FrequencyMonthly {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// PlanRequest представляет запрос на создание плана
type PlanRequest struct {
	PlanName         string  `json:"plan_name" binding:"required" validate:"required"`
	Price            float64 `json:"price" validate:"gte=0"`
	Currency         string  `json:"currency" validate:"required,len=3"`
	PaymentFrequency string  `json:"payment_frequency" validate:"required,oneof=monthly yearly"`
	Characters       *int64  `json:"characters,omitempty"`
	Minutes          *int64  `json:"minutes,omitempty"`
	TeamMembers      *int64  `json:"team_members,omitempty"`
	CreditGrant
}
