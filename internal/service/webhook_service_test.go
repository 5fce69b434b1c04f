package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/internal/metrics"
	"github.com/scriberly/billing-service/internal/paystack"
	"github.com/scriberly/billing-service/internal/repository"
	"github.com/scriberly/billing-service/pkg/logger"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type capturingPublisher struct {
	bonusCalls     int
	bonusUserID    int64
	bonusPlanID    int64
	bonusTotal     float64
	bonusGateway   string
	processedCalls int
}

func (p *capturingPublisher) PublishReferrerBonus(ctx context.Context, user *domain.User, planID int64, totalPrice float64, gateway string) error {
	p.bonusCalls++
	p.bonusUserID = user.ID
	p.bonusPlanID = planID
	p.bonusTotal = totalPrice
	p.bonusGateway = gateway
	return nil
}

func (p *capturingPublisher) PublishPaymentProcessed(ctx context.Context, user *domain.User) error {
	p.processedCalls++
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

type testEnv struct {
	svc         *WebhookService
	subscribers *repository.InMemorySubscriberRepository
	plans       *repository.InMemoryPlanRepository
	users       *repository.InMemoryUserRepository
	payments    *repository.InMemoryPaymentRepository
	publisher   *capturingPublisher
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	log := testLogger()
	env := &testEnv{
		subscribers: repository.NewInMemorySubscriberRepository(),
		plans:       repository.NewInMemoryPlanRepository(),
		users:       repository.NewInMemoryUserRepository(),
		payments:    repository.NewInMemoryPaymentRepository(),
		publisher:   &capturingPublisher{},
	}

	env.svc = NewWebhookService(
		env.subscribers,
		env.plans,
		env.users,
		env.payments,
		repository.NoopTxManager{},
		env.publisher,
		NewLoggingRoleSyncer(log),
		metrics.NewWebhookMetrics(prometheus.NewRegistry(), log),
		cfg,
		log,
	)
	env.svc.nowFn = func() time.Time { return testNow }

	return env
}

// seed создает план, пользователя и подписку в ожидании оплаты.
func (e *testEnv) seed(t *testing.T, plan domain.SubscriptionPlan, user domain.User) *domain.Subscriber {
	t.Helper()

	require.NoError(t, e.plans.Create(context.Background(), &plan))
	e.users.Put(user)

	sub := &domain.Subscriber{
		SubscriptionID: "SUB_abc123",
		UserID:         user.ID,
		PlanID:         plan.ID,
		Status:         domain.SubscriberStatusPending,
	}
	require.NoError(t, e.subscribers.Create(context.Background(), sub))
	return sub
}

func monthlyPlan() domain.SubscriptionPlan {
	return domain.SubscriptionPlan{
		PlanName:         "Professional",
		Price:            100,
		Currency:         "NGN",
		PaymentFrequency: domain.FrequencyMonthly,
		Characters:       int64Ptr(50000),
		Minutes:          int64Ptr(300),
		TeamMembers:      int64Ptr(5),
		CreditGrant: domain.CreditGrant{
			GPT4oCredits:         int64Ptr(500),
			Claude3SonnetCredits: int64Ptr(200),
			DalleImages:          int64Ptr(40),
		},
	}
}

func baseUser() domain.User {
	return domain.User{
		ID:    42,
		Email: "owner@example.com",
		Group: domain.GroupUser,
	}
}

func chargeEvent() paystack.Event {
	return paystack.Event{
		Kind: paystack.EventChargeSuccess,
		Type: "charge.success",
		Data: paystack.EventData{
			SubscriptionCode: "SUB_abc123",
			Reference:        "ref_789",
			Amount:           11000,
			Currency:         "NGN",
			Status:           "success",
		},
	}
}

func disableEvent() paystack.Event {
	return paystack.Event{
		Kind: paystack.EventSubscriptionDisable,
		Type: "subscription.disable",
		Data: paystack.EventData{SubscriptionCode: "SUB_abc123"},
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestHandleEvent_ChargeSuccess_ActivatesSubscription(t *testing.T) {
	env := newTestEnv(t, Config{TaxRate: 10})
	env.seed(t, monthlyPlan(), baseUser())

	err := env.svc.HandleEvent(context.Background(), chargeEvent())
	require.NoError(t, err)

	sub, err := env.subscribers.GetBySubscriptionID(context.Background(), "SUB_abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriberStatusActive, sub.Status)
	assert.Equal(t, testNow.Add(30*24*time.Hour), sub.ActiveUntil)
}

func TestHandleEvent_ChargeSuccess_YearlyPlanActivatesFor365Days(t *testing.T) {
	env := newTestEnv(t, Config{})
	plan := monthlyPlan()
	plan.PaymentFrequency = domain.FrequencyYearly
	env.seed(t, plan, baseUser())

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	sub, err := env.subscribers.GetBySubscriptionID(context.Background(), "SUB_abc123")
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(365*24*time.Hour), sub.ActiveUntil)
}

func TestHandleEvent_ChargeSuccess_RecordsPaymentWithTax(t *testing.T) {
	env := newTestEnv(t, Config{TaxRate: 10})
	env.seed(t, monthlyPlan(), baseUser())

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	payments, err := env.payments.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	p := payments[0]
	assert.Equal(t, 110.0, p.Price)
	assert.Equal(t, "ref_789", p.OrderID)
	assert.Equal(t, "Professional", p.PlanName)
	assert.Equal(t, "NGN", p.Currency)
	assert.Equal(t, paystack.GatewayName, p.Gateway)
	assert.Equal(t, domain.FrequencyMonthly, p.Frequency)
	assert.Equal(t, domain.PaymentStatusCompleted, p.Status)
	require.NotNil(t, p.GPT4oCredits)
	assert.Equal(t, int64(500), *p.GPT4oCredits)
}

func TestHandleEvent_ChargeSuccess_FallbackCurrency(t *testing.T) {
	env := newTestEnv(t, Config{Currency: "USD"})
	plan := monthlyPlan()
	plan.Currency = ""
	env.seed(t, plan, baseUser())

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	payments, err := env.payments.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "USD", payments[0].Currency)
}

func TestHandleEvent_ChargeSuccess_ZeroTaxRateChargesListPrice(t *testing.T) {
	env := newTestEnv(t, Config{TaxRate: 0})
	env.seed(t, monthlyPlan(), baseUser())

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	payments, err := env.payments.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, 100.0, payments[0].Price)
}

func TestHandleEvent_ChargeSuccess_OverwritesUserCredits(t *testing.T) {
	env := newTestEnv(t, Config{})
	user := baseUser()
	// остатки от прошлого плана, которые оплата должна перезаписать
	user.CreditGrant = domain.CreditGrant{
		GPT4oCredits: int64Ptr(3),
		DalleImages:  int64Ptr(999),
	}
	env.seed(t, monthlyPlan(), user)

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	updated, err := env.users.GetByID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, updated.GPT4oCredits)
	assert.Equal(t, int64(500), *updated.GPT4oCredits)
	require.NotNil(t, updated.DalleImages)
	assert.Equal(t, int64(40), *updated.DalleImages)
	assert.Nil(t, updated.GPT4Credits)

	assert.Equal(t, domain.GroupSubscriber, updated.Group)
	require.NotNil(t, updated.PlanID)
	require.NotNil(t, updated.MemberLimit)
	assert.Equal(t, int64(5), *updated.MemberLimit)
	require.NotNil(t, updated.AvailableChars)
	assert.Equal(t, int64(50000), *updated.AvailableChars)
}

func TestHandleEvent_ChargeSuccess_AdminKeepsRole(t *testing.T) {
	env := newTestEnv(t, Config{})
	user := baseUser()
	user.Group = domain.GroupAdmin
	env.seed(t, monthlyPlan(), user)

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	updated, err := env.users.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupAdmin, updated.Group)
}

func TestHandleEvent_ChargeSuccess_SnapshotSurvivesPlanEdits(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.seed(t, monthlyPlan(), baseUser())

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	// правка каталога задним числом не должна менять записанный платеж
	edited := monthlyPlan()
	edited.ID = 1
	edited.GPT4oCredits = int64Ptr(7)
	env.plans.Put(edited)

	payments, err := env.payments.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.NotNil(t, payments[0].GPT4oCredits)
	assert.Equal(t, int64(500), *payments[0].GPT4oCredits)
}

func TestHandleEvent_ChargeSuccess_PublishesPaymentProcessed(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.seed(t, monthlyPlan(), baseUser())

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	assert.Equal(t, 1, env.publisher.processedCalls)
	assert.Equal(t, 0, env.publisher.bonusCalls)
}

func TestHandleEvent_ReferralFirstPolicy(t *testing.T) {
	tests := []struct {
		name           string
		priorCompleted bool
		wantBonus      int
	}{
		{name: "first payment earns bonus", priorCompleted: false, wantBonus: 1},
		{name: "repeat payment earns nothing", priorCompleted: true, wantBonus: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{TaxRate: 10, ReferralEnabled: true, ReferralPolicy: ReferralPolicyFirst})
			env.seed(t, monthlyPlan(), baseUser())

			if tt.priorCompleted {
				require.NoError(t, env.payments.Create(context.Background(), &domain.Payment{
					UserID:  42,
					PlanID:  1,
					OrderID: "ref_old",
					Status:  domain.PaymentStatusCompleted,
				}))
			}

			require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

			assert.Equal(t, tt.wantBonus, env.publisher.bonusCalls)
			if tt.wantBonus > 0 {
				assert.Equal(t, int64(42), env.publisher.bonusUserID)
				assert.Equal(t, 110.0, env.publisher.bonusTotal)
				assert.Equal(t, paystack.GatewayName, env.publisher.bonusGateway)
			}
		})
	}
}

func TestHandleEvent_ReferralEveryPolicy_BonusOnRepeatPayment(t *testing.T) {
	env := newTestEnv(t, Config{ReferralEnabled: true, ReferralPolicy: "every"})
	env.seed(t, monthlyPlan(), baseUser())

	require.NoError(t, env.payments.Create(context.Background(), &domain.Payment{
		UserID: 42,
		PlanID: 1,
		Status: domain.PaymentStatusCompleted,
	}))

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	assert.Equal(t, 1, env.publisher.bonusCalls)
}

func TestHandleEvent_IncompletePaymentDoesNotBlockFirstBonus(t *testing.T) {
	env := newTestEnv(t, Config{ReferralEnabled: true, ReferralPolicy: ReferralPolicyFirst})
	env.seed(t, monthlyPlan(), baseUser())

	// незавершенный платеж не считается при политике "first"
	require.NoError(t, env.payments.Create(context.Background(), &domain.Payment{
		UserID: 42,
		PlanID: 1,
		Status: domain.PaymentStatusPending,
	}))

	require.NoError(t, env.svc.HandleEvent(context.Background(), chargeEvent()))

	assert.Equal(t, 1, env.publisher.bonusCalls)
}

func TestHandleEvent_SubscriptionDisable_CancelsUntilEndOfMonth(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.seed(t, monthlyPlan(), baseUser())

	require.NoError(t, env.svc.HandleEvent(context.Background(), disableEvent()))

	sub, err := env.subscribers.GetBySubscriptionID(context.Background(), "SUB_abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriberStatusCancelled, sub.Status)
	assert.Equal(t, time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC), sub.ActiveUntil)
}

func TestHandleEvent_SubscriptionDisable_DemotesRegularUser(t *testing.T) {
	env := newTestEnv(t, Config{})
	user := baseUser()
	user.Group = domain.GroupSubscriber
	user.PlanID = int64Ptr(1)
	user.MemberLimit = int64Ptr(5)
	user.GPT4oCredits = int64Ptr(500)
	env.seed(t, monthlyPlan(), user)

	require.NoError(t, env.svc.HandleEvent(context.Background(), disableEvent()))

	updated, err := env.users.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupUser, updated.Group)
	assert.Nil(t, updated.PlanID)
	assert.Nil(t, updated.MemberLimit)
	// кредиты доживают до конца оплаченного периода
	require.NotNil(t, updated.GPT4oCredits)
	assert.Equal(t, int64(500), *updated.GPT4oCredits)
}

func TestHandleEvent_SubscriptionDisable_AdminKeepsRoleAndMemberLimit(t *testing.T) {
	env := newTestEnv(t, Config{})
	user := baseUser()
	user.Group = domain.GroupAdmin
	user.PlanID = int64Ptr(1)
	user.MemberLimit = int64Ptr(10)
	env.seed(t, monthlyPlan(), user)

	require.NoError(t, env.svc.HandleEvent(context.Background(), disableEvent()))

	updated, err := env.users.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupAdmin, updated.Group)
	assert.Nil(t, updated.PlanID)
	require.NotNil(t, updated.MemberLimit)
	assert.Equal(t, int64(10), *updated.MemberLimit)
}

func TestHandleEvent_UnknownEventIsIgnored(t *testing.T) {
	env := newTestEnv(t, Config{})

	err := env.svc.HandleEvent(context.Background(), paystack.Event{
		Kind: paystack.EventUnknown,
		Type: "invoice.create",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.publisher.processedCalls)
}

func TestHandleEvent_UnknownSubscriptionFails(t *testing.T) {
	env := newTestEnv(t, Config{})

	err := env.svc.HandleEvent(context.Background(), chargeEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var webhookErr *domain.WebhookError
	assert.ErrorAs(t, err, &webhookErr)
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid month",
			in:   time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "february",
			in:   time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "december rolls into new year",
			in:   time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, endOfMonth(tt.in))
		})
	}
}

func testLogger() *logger.Logger {
	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)
	return log
}
