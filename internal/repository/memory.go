package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scriberly/billing-service/internal/domain"
)

// InMemorySubscriberRepository реализация репозитория подписок в памяти.
// Используется тестами и локальной разработкой без базы данных.
type InMemorySubscriberRepository struct {
	subscribers map[string]domain.Subscriber // ключ: subscription_id
	nextID      int64
	mutex       sync.RWMutex
}

// NewInMemorySubscriberRepository создает новый репозиторий подписок в памяти.
func NewInMemorySubscriberRepository() *InMemorySubscriberRepository {
	return &InMemorySubscriberRepository{
		subscribers: make(map[string]domain.Subscriber),
		nextID:      1,
	}
}

// GetBySubscriptionID возвращает подписку по коду подписки шлюза.
func (r *InMemorySubscriberRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Subscriber, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sub, exists := r.subscribers[subscriptionID]
	if !exists {
		return nil, domain.NewNotFoundError("subscriber", subscriptionID)
	}

	return &sub, nil
}

// Create сохраняет новую подписку.
func (r *InMemorySubscriberRepository) Create(ctx context.Context, sub *domain.Subscriber) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.subscribers[sub.SubscriptionID]; exists {
		return domain.ErrDuplicate
	}

	sub.ID = r.nextID
	r.nextID++
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	r.subscribers[sub.SubscriptionID] = *sub

	return nil
}

// Update обновляет существующую подписку.
func (r *InMemorySubscriberRepository) Update(ctx context.Context, sub *domain.Subscriber) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.subscribers[sub.SubscriptionID]; !exists {
		return domain.NewNotFoundError("subscriber", sub.SubscriptionID)
	}

	sub.UpdatedAt = time.Now()
	r.subscribers[sub.SubscriptionID] = *sub

	return nil
}

// InMemoryPlanRepository реализация каталога планов в памяти.
type InMemoryPlanRepository struct {
	plans  map[int64]domain.SubscriptionPlan
	nextID int64
	mutex  sync.RWMutex
}

// NewInMemoryPlanRepository создает новый каталог планов в памяти.
func NewInMemoryPlanRepository() *InMemoryPlanRepository {
	return &InMemoryPlanRepository{
		plans:  make(map[int64]domain.SubscriptionPlan),
		nextID: 1,
	}
}

// GetByID возвращает план по его ID.
func (r *InMemoryPlanRepository) GetByID(ctx context.Context, id int64) (*domain.SubscriptionPlan, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	plan, exists := r.plans[id]
	if !exists {
		return nil, domain.NewNotFoundError("subscription plan", strconv.FormatInt(id, 10))
	}

	// Копируем гранты, чтобы правки плана извне не меняли хранимую запись
	plan.CreditGrant = plan.CreditGrant.Clone()
	return &plan, nil
}

// List возвращает все планы, отсортированные по цене.
func (r *InMemoryPlanRepository) List(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	plans := make([]domain.SubscriptionPlan, 0, len(r.plans))
	for _, plan := range r.plans {
		plan.CreditGrant = plan.CreditGrant.Clone()
		plans = append(plans, plan)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Price < plans[j].Price
	})

	return plans, nil
}

// Create сохраняет новый план.
func (r *InMemoryPlanRepository) Create(ctx context.Context, plan *domain.SubscriptionPlan) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	plan.ID = r.nextID
	r.nextID++
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	stored := *plan
	stored.CreditGrant = plan.CreditGrant.Clone()
	r.plans[plan.ID] = stored

	return nil
}

// Put заменяет план в каталоге, в обход неизменяемости. Нужен тестам,
// проверяющим независимость снимков платежей от правок плана.
func (r *InMemoryPlanRepository) Put(plan domain.SubscriptionPlan) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	plan.CreditGrant = plan.CreditGrant.Clone()
	r.plans[plan.ID] = plan
}

// InMemoryUserRepository реализация репозитория пользователей в памяти.
type InMemoryUserRepository struct {
	users map[int64]domain.User
	mutex sync.RWMutex
}

// NewInMemoryUserRepository создает новый репозиторий пользователей в памяти.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[int64]domain.User),
	}
}

// GetByID возвращает пользователя по его ID.
func (r *InMemoryUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.NewNotFoundError("user", strconv.FormatInt(id, 10))
	}

	user.CreditGrant = user.CreditGrant.Clone()
	return &user, nil
}

// Update сохраняет пользователя.
func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return domain.NewNotFoundError("user", strconv.FormatInt(user.ID, 10))
	}

	user.UpdatedAt = time.Now()
	stored := *user
	stored.CreditGrant = user.CreditGrant.Clone()
	r.users[user.ID] = stored

	return nil
}

// Put добавляет пользователя в хранилище. Нужен для наполнения тестов.
func (r *InMemoryUserRepository) Put(user domain.User) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	user.CreditGrant = user.CreditGrant.Clone()
	r.users[user.ID] = user
}

// InMemoryPaymentRepository реализация журнала платежей в памяти.
type InMemoryPaymentRepository struct {
	payments map[uuid.UUID]domain.Payment
	mutex    sync.RWMutex
}

// NewInMemoryPaymentRepository создает новый журнал платежей в памяти.
func NewInMemoryPaymentRepository() *InMemoryPaymentRepository {
	return &InMemoryPaymentRepository{
		payments: make(map[uuid.UUID]domain.Payment),
	}
}

// Create добавляет строку журнала.
func (r *InMemoryPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()

	stored := *payment
	stored.CreditGrant = payment.CreditGrant.Clone()
	r.payments[payment.ID] = stored

	return nil
}

// GetByUserID возвращает все платежи пользователя, новые первыми.
func (r *InMemoryPaymentRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Payment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	payments := make([]domain.Payment, 0)
	for _, payment := range r.payments {
		if payment.UserID == userID {
			payment.CreditGrant = payment.CreditGrant.Clone()
			payments = append(payments, payment)
		}
	}

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	return payments, nil
}

// HasCompletedPayment сообщает, есть ли у пользователя завершенный платеж.
func (r *InMemoryPaymentRepository) HasCompletedPayment(ctx context.Context, userID int64) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, payment := range r.payments {
		if payment.UserID == userID && payment.Status == domain.PaymentStatusCompleted {
			return true, nil
		}
	}

	return false, nil
}

// InMemoryTemplateRepository реализация каталога шаблонов в памяти.
type InMemoryTemplateRepository struct {
	templates []domain.Template
	mutex     sync.RWMutex
}

// NewInMemoryTemplateRepository создает новый каталог шаблонов в памяти.
func NewInMemoryTemplateRepository(templates ...domain.Template) *InMemoryTemplateRepository {
	return &InMemoryTemplateRepository{templates: templates}
}

// List возвращает активные шаблоны, отсортированные по имени.
func (r *InMemoryTemplateRepository) List(ctx context.Context) ([]domain.Template, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.Template, 0, len(r.templates))
	for _, t := range r.templates {
		if t.Active {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

// NoopTxManager реализует TxManager без реальных транзакций. Хранилища
// в памяти атомарны на уровне отдельных операций.
type NoopTxManager struct{}

// WithinTx просто выполняет fn с исходным контекстом.
func (NoopTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
