package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/internal/kafka/producer"
	"github.com/scriberly/billing-service/internal/metrics"
	"github.com/scriberly/billing-service/internal/paystack"
	"github.com/scriberly/billing-service/internal/repository"
	"github.com/scriberly/billing-service/pkg/logger"
)

// ReferralPolicyFirst начислять бонус только за первый платеж
// пользователя; любое другое значение политики означает каждый платеж.
const ReferralPolicyFirst = "first"

// Config параметры обработки платежей
type Config struct {
	TaxRate         float64 // процент налога; 0 и меньше отключает налог
	Currency        string  // валюта по умолчанию для планов без валюты
	ReferralEnabled bool
	ReferralPolicy  string
}

// WebhookService применяет вебхук-события шлюза к записям подписок,
// пользователей и журналу платежей. Обработка одной доставки — один
// ограниченный блок работы: мутации выполняются в одной транзакции,
// доставки по одной подписке сериализуются между собой.
type WebhookService struct {
	subscribers repository.SubscriberRepository
	plans       repository.PlanRepository
	users       repository.UserRepository
	payments    repository.PaymentRepository
	tx          repository.TxManager
	publisher   producer.EventPublisher
	roles       RoleSyncer
	metrics     metrics.WebhookMetrics
	cfg         Config
	log         *logger.Logger

	handlers map[paystack.EventKind]func(ctx context.Context, event paystack.Event) error

	// nowFn подменяется в тестах
	nowFn func() time.Time

	// locks сериализует обработку по коду подписки: повторная доставка
	// шлюза не должна гоняться с первой за одну и ту же запись
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewWebhookService создает новый сервис обработки вебхуков.
func NewWebhookService(
	subscribers repository.SubscriberRepository,
	plans repository.PlanRepository,
	users repository.UserRepository,
	payments repository.PaymentRepository,
	tx repository.TxManager,
	publisher producer.EventPublisher,
	roles RoleSyncer,
	webhookMetrics metrics.WebhookMetrics,
	cfg Config,
	log *logger.Logger,
) *WebhookService {
	s := &WebhookService{
		subscribers: subscribers,
		plans:       plans,
		users:       users,
		payments:    payments,
		tx:          tx,
		publisher:   publisher,
		roles:       roles,
		metrics:     webhookMetrics,
		cfg:         cfg,
		log:         log,
		nowFn:       time.Now,
		locks:       make(map[string]*sync.Mutex),
	}

	// Закрытая таблица обработчиков: нераспознанный тип события не
	// попадает сюда вовсе
	s.handlers = map[paystack.EventKind]func(ctx context.Context, event paystack.Event) error{
		paystack.EventChargeSuccess:       s.handleChargeSuccess,
		paystack.EventSubscriptionDisable: s.handleSubscriptionDisable,
	}

	return s
}

// HandleEvent обрабатывает одно вебхук-событие. К этому моменту подпись
// уже проверена и шлюз получил подтверждение доставки, поэтому любая
// ошибка здесь логируется и учитывается в метриках: повтора со стороны
// шлюза не будет.
func (s *WebhookService) HandleEvent(ctx context.Context, event paystack.Event) error {
	handler, ok := s.handlers[event.Kind]
	if !ok {
		s.log.Info("Ignoring webhook event of unknown type: %s", event.Type)
		return nil
	}

	s.metrics.IncEventReceived(event.Kind.String())

	unlock := s.lockSubscription(event.Data.SubscriptionCode)
	defer unlock()

	if err := handler(ctx, event); err != nil {
		s.metrics.IncEventFailed(event.Kind.String())
		s.log.Errorw("Failed to process webhook event after acknowledgement",
			"eventType", event.Kind.String(),
			"subscriptionCode", event.Data.SubscriptionCode,
			"error", err)
		return domain.NewWebhookError(event.Kind.String(), "processing failed", err)
	}

	s.metrics.IncEventProcessed(event.Kind.String())
	return nil
}

// lockSubscription берет мьютекс для кода подписки и возвращает функцию
// его освобождения.
func (s *WebhookService) lockSubscription(subscriptionCode string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[subscriptionCode]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[subscriptionCode] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// handleSubscriptionDisable отменяет подписку. Отмена действует до конца
// текущего календарного месяца, считая от времени обработки.
func (s *WebhookService) handleSubscriptionDisable(ctx context.Context, event paystack.Event) error {
	now := s.nowFn()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.subscribers.GetBySubscriptionID(ctx, event.Data.SubscriptionCode)
		if err != nil {
			return fmt.Errorf("subscription lookup: %w", err)
		}

		sub.Status = domain.SubscriberStatusCancelled
		sub.ActiveUntil = endOfMonth(now)
		if err := s.subscribers.Update(ctx, sub); err != nil {
			return fmt.Errorf("subscription update: %w", err)
		}

		user, err := s.users.GetByID(ctx, sub.UserID)
		if err != nil {
			return fmt.Errorf("user lookup: %w", err)
		}

		// Две ветки понижения роли намеренно разведены: администратор
		// сохраняет роль и лимит участников, остальные понижаются до
		// базовой роли с очисткой лимита. В исходной системе ветки
		// были склеены опечаткой в условии.
		if user.IsAdmin() {
			if err := s.roles.SyncRole(ctx, user, domain.GroupAdmin); err != nil {
				return fmt.Errorf("role sync: %w", err)
			}
			user.Group = domain.GroupAdmin
			user.PlanID = nil
		} else {
			if err := s.roles.SyncRole(ctx, user, domain.GroupUser); err != nil {
				return fmt.Errorf("role sync: %w", err)
			}
			user.Group = domain.GroupUser
			user.PlanID = nil
			user.MemberLimit = nil
		}

		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("user update: %w", err)
		}

		s.log.Infow("Subscription cancelled",
			"subscriptionCode", sub.SubscriptionID,
			"userID", user.ID,
			"activeUntil", sub.ActiveUntil)
		return nil
	})
}

// handleChargeSuccess активирует подписку на оплаченный период,
// добавляет строку журнала платежей со снимком грантов плана и
// перезаписывает кредиты пользователя свежими грантами.
func (s *WebhookService) handleChargeSuccess(ctx context.Context, event paystack.Event) error {
	now := s.nowFn()

	var (
		chargedUser   *domain.User
		chargedPlanID int64
		totalPrice    float64
		currency      string
		referralDue   bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.subscribers.GetBySubscriptionID(ctx, event.Data.SubscriptionCode)
		if err != nil {
			return fmt.Errorf("subscription lookup: %w", err)
		}

		plan, err := s.plans.GetByID(ctx, sub.PlanID)
		if err != nil {
			return fmt.Errorf("plan lookup: %w", err)
		}

		sub.Status = domain.SubscriberStatusActive
		sub.ActiveUntil = now.Add(plan.Duration())
		if err := s.subscribers.Update(ctx, sub); err != nil {
			return fmt.Errorf("subscription update: %w", err)
		}

		user, err := s.users.GetByID(ctx, sub.UserID)
		if err != nil {
			return fmt.Errorf("user lookup: %w", err)
		}

		taxValue := 0.0
		if s.cfg.TaxRate > 0 {
			taxValue = plan.Price * s.cfg.TaxRate / 100
		}
		totalPrice = plan.Price + taxValue

		currency = plan.Currency
		if currency == "" {
			currency = s.cfg.Currency
		}

		// Реферальный бонус решается до записи текущего платежа, чтобы
		// политика "first" не посчитала его уже существующим
		referralDue, err = s.referralDue(ctx, user)
		if err != nil {
			return fmt.Errorf("referral check: %w", err)
		}

		payment := &domain.Payment{
			UserID:      user.ID,
			PlanID:      plan.ID,
			OrderID:     event.Data.Reference,
			PlanName:    plan.PlanName,
			Price:       totalPrice,
			Currency:    currency,
			Gateway:     paystack.GatewayName,
			Frequency:   plan.PaymentFrequency,
			Status:      domain.PaymentStatusCompleted,
			CreditGrant: plan.CreditGrant.Clone(),
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("payment record: %w", err)
		}

		group := domain.GroupSubscriber
		if user.IsAdmin() {
			group = domain.GroupAdmin
		}
		if err := s.roles.SyncRole(ctx, user, group); err != nil {
			return fmt.Errorf("role sync: %w", err)
		}

		planID := plan.ID
		user.Group = group
		user.PlanID = &planID
		user.MemberLimit = cloneQuota(plan.TeamMembers)
		user.AvailableChars = cloneQuota(plan.Characters)
		user.AvailableMinutes = cloneQuota(plan.Minutes)
		// Перезапись, а не прибавление: оплата сбрасывает остатки до
		// свежего гранта плана
		user.CreditGrant = plan.CreditGrant.Clone()

		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("user update: %w", err)
		}

		chargedUser = user
		chargedPlanID = plan.ID

		s.log.Infow("Charge processed",
			"subscriptionCode", sub.SubscriptionID,
			"userID", user.ID,
			"planID", plan.ID,
			"totalPrice", totalPrice,
			"activeUntil", sub.ActiveUntil)
		return nil
	})
	if err != nil {
		return err
	}

	// События публикуются после фиксации транзакции, чтобы подписчики
	// не увидели событие об откатившемся платеже
	if referralDue {
		if err := s.publisher.PublishReferrerBonus(ctx, chargedUser, chargedPlanID, totalPrice, paystack.GatewayName); err != nil {
			s.log.Errorw("Failed to publish referrer bonus event", "error", err, "userID", chargedUser.ID)
		}
	}
	if err := s.publisher.PublishPaymentProcessed(ctx, chargedUser); err != nil {
		s.log.Errorw("Failed to publish payment processed event", "error", err, "userID", chargedUser.ID)
	}

	s.metrics.ObservePaymentAmount(totalPrice, currency)
	return nil
}

// referralDue решает, положен ли реферальный бонус за этот платеж.
func (s *WebhookService) referralDue(ctx context.Context, user *domain.User) (bool, error) {
	if !s.cfg.ReferralEnabled {
		return false, nil
	}

	if s.cfg.ReferralPolicy != ReferralPolicyFirst {
		// Любая политика, кроме "first", означает бонус за каждый платеж
		return true, nil
	}

	has, err := s.payments.HasCompletedPayment(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// cloneQuota копирует необязательный лимит плана, чтобы запись
// пользователя не делила указатель с каталожной записью.
func cloneQuota(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// endOfMonth возвращает последнюю секунду текущего календарного месяца.
func endOfMonth(t time.Time) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return firstOfMonth.AddDate(0, 1, 0).Add(-time.Second)
}
