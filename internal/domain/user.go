package domain

import (
	"time"
)

// UserGroup роль пользователя
type UserGroup string

const (
	GroupAdmin      UserGroup = "admin"
	GroupSubscriber UserGroup = "subscriber"
	GroupUser       UserGroup = "user"
)

// User представляет владельца подписки. Кредитные поля всегда отражают
// гранты последнего активированного плана: оплата перезаписывает их
// заново, а не прибавляет к остатку.
type User struct {
	ID               int64     `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	Group            UserGroup `db:"group" json:"group"`
	PlanID           *int64    `db:"plan_id" json:"plan_id,omitempty"`
	MemberLimit      *int64    `db:"member_limit" json:"member_limit,omitempty"`
	AvailableChars   *int64    `db:"available_chars" json:"available_chars,omitempty"`
	AvailableMinutes *int64    `db:"available_minutes" json:"available_minutes,omitempty"`
	CreditGrant
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin сообщает, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Group == GroupAdmin
}
