package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriberly/billing-service/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func TestInMemorySubscriberRepository(t *testing.T) {
	repo := NewInMemorySubscriberRepository()
	ctx := context.Background()

	sub := &domain.Subscriber{
		SubscriptionID: "SUB_1",
		UserID:         7,
		PlanID:         1,
		Status:         domain.SubscriberStatusPending,
	}
	require.NoError(t, repo.Create(ctx, sub))
	assert.NotZero(t, sub.ID)

	found, err := repo.GetBySubscriptionID(ctx, "SUB_1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), found.UserID)

	found.Status = domain.SubscriberStatusActive
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.GetBySubscriptionID(ctx, "SUB_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriberStatusActive, updated.Status)
}

func TestInMemorySubscriberRepository_NotFound(t *testing.T) {
	repo := NewInMemorySubscriberRepository()

	_, err := repo.GetBySubscriptionID(context.Background(), "SUB_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Update(context.Background(), &domain.Subscriber{SubscriptionID: "SUB_missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInMemoryPlanRepository_CloneIsolation(t *testing.T) {
	repo := NewInMemoryPlanRepository()
	ctx := context.Background()

	plan := &domain.SubscriptionPlan{
		PlanName:         "Professional",
		Currency:         "NGN",
		PaymentFrequency: domain.FrequencyMonthly,
		CreditGrant:      domain.CreditGrant{GPT4oCredits: int64Ptr(500)},
	}
	require.NoError(t, repo.Create(ctx, plan))

	got, err := repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)

	// правка прочитанной копии не должна протечь в хранилище
	*got.GPT4oCredits = 1

	fresh, err := repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), *fresh.GPT4oCredits)
}

func TestInMemoryUserRepository(t *testing.T) {
	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	repo.Put(domain.User{ID: 42, Email: "owner@example.com", Group: domain.GroupUser})

	user, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)

	user.Group = domain.GroupSubscriber
	user.PlanID = int64Ptr(1)
	require.NoError(t, repo.Update(ctx, user))

	updated, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupSubscriber, updated.Group)
	require.NotNil(t, updated.PlanID)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInMemoryPaymentRepository_HasCompletedPayment(t *testing.T) {
	repo := NewInMemoryPaymentRepository()
	ctx := context.Background()

	has, err := repo.HasCompletedPayment(ctx, 42)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.Create(ctx, &domain.Payment{
		UserID: 42,
		Status: domain.PaymentStatusPending,
	}))

	// незавершенный платеж не считается
	has, err = repo.HasCompletedPayment(ctx, 42)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.Create(ctx, &domain.Payment{
		UserID: 42,
		Status: domain.PaymentStatusCompleted,
	}))

	has, err = repo.HasCompletedPayment(ctx, 42)
	require.NoError(t, err)
	assert.True(t, has)

	// платежи чужого пользователя не влияют
	has, err = repo.HasCompletedPayment(ctx, 7)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestInMemoryPaymentRepository_GetByUserID(t *testing.T) {
	repo := NewInMemoryPaymentRepository()
	ctx := context.Background()

	for _, orderID := range []string{"ref_1", "ref_2"} {
		require.NoError(t, repo.Create(ctx, &domain.Payment{
			UserID:  42,
			OrderID: orderID,
			Status:  domain.PaymentStatusCompleted,
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Payment{
		UserID: 7,
		Status: domain.PaymentStatusCompleted,
	}))

	payments, err := repo.GetByUserID(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestNoopTxManager_PropagatesError(t *testing.T) {
	err := NoopTxManager{}.WithinTx(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
