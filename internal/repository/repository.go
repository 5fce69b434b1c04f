package repository

import (
	"context"

	"github.com/scriberly/billing-service/internal/domain"
)

// SubscriberRepository определяет методы для работы с хранилищем подписок.
type SubscriberRepository interface {
	// GetBySubscriptionID возвращает подписку по коду подписки шлюза.
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Subscriber, error)

	// Create сохраняет новую подписку в хранилище.
	Create(ctx context.Context, sub *domain.Subscriber) error

	// Update обновляет статус и срок действия существующей подписки.
	Update(ctx context.Context, sub *domain.Subscriber) error
}

// PlanRepository определяет методы для работы с каталогом планов.
type PlanRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.SubscriptionPlan, error)
	List(ctx context.Context) ([]domain.SubscriptionPlan, error)
	Create(ctx context.Context, plan *domain.SubscriptionPlan) error
}

// UserRepository определяет методы для работы с пользователями.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// PaymentRepository определяет методы для работы с журналом платежей.
// Журнал только пополняется, записи в нем не изменяются.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByUserID(ctx context.Context, userID int64) ([]domain.Payment, error)

	// HasCompletedPayment сообщает, есть ли у пользователя хотя бы один
	// завершенный платеж. Используется реферальной политикой "first".
	HasCompletedPayment(ctx context.Context, userID int64) (bool, error)
}

// TemplateRepository определяет методы для работы с каталогом шаблонов.
type TemplateRepository interface {
	List(ctx context.Context) ([]domain.Template, error)
}

// TxManager выполняет функцию внутри одной транзакции хранилища.
// Репозитории, вызванные с переданным внутрь контекстом, присоединяются
// к открытой транзакции.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
