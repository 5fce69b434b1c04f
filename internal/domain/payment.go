package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus статус платежа
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment представляет строку журнала платежей. Запись создается один раз
// при успешном списании и после этого не меняется; гранты плана
// копируются в нее по значению на момент оплаты.
type Payment struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	PlanID    int64            `db:"plan_id" json:"plan_id"`
	OrderID   string           `db:"order_id" json:"order_id"` // референс списания в шлюзе
	PlanName  string           `db:"plan_name" json:"plan_name"`
	Price     float64          `db:"price" json:"price"` // итоговая цена с налогом
	Currency  string           `db:"currency" json:"currency"`
	Gateway   string           `db:"gateway" json:"gateway"`
	Frequency PaymentFrequency `db:"frequency" json:"frequency"`
	Status    PaymentStatus    `db:"status" json:"status"`
	CreditGrant
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
