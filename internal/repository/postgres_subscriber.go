package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

// postgresSubscriberRepo реализует SubscriberRepository для PostgreSQL.
type postgresSubscriberRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresSubscriberRepository создает новый экземпляр репозитория для PostgreSQL.
func NewPostgresSubscriberRepository(db *sqlx.DB, log *logger.Logger) SubscriberRepository {
	return &postgresSubscriberRepo{
		db:  db,
		log: log,
	}
}

// GetBySubscriptionID возвращает подписку по коду подписки Paystack.
func (r *postgresSubscriberRepo) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	query := `
        SELECT id, subscription_id, user_id, plan_id, status, active_until,
               created_at, updated_at
        FROM subscribers
        WHERE subscription_id = $1`

	err := sqlx.GetContext(ctx, ext(ctx, r.db), &sub, query, subscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnw("Subscriber not found", "subscriptionID", subscriptionID)
			return nil, domain.NewNotFoundError("subscriber", subscriptionID)
		}
		r.log.Errorw("Failed to get subscriber from DB", "error", err, "subscriptionID", subscriptionID)
		return nil, fmt.Errorf("repository: failed to get subscriber: %w", err)
	}

	return &sub, nil
}

// Create сохраняет новую подписку в базе данных.
func (r *postgresSubscriberRepo) Create(ctx context.Context, sub *domain.Subscriber) error {
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query := `
        INSERT INTO subscribers (
            subscription_id, user_id, plan_id, status, active_until,
            created_at, updated_at
        ) VALUES (
            :subscription_id, :user_id, :plan_id, :status, :active_until,
            :created_at, :updated_at
        ) RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, ext(ctx, r.db), query, sub)
	if err != nil {
		r.log.Errorw("Failed to create subscriber in DB", "error", err, "subscriptionID", sub.SubscriptionID)
		return fmt.Errorf("repository: failed to create subscriber: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&sub.ID); err != nil {
			return fmt.Errorf("repository: failed to scan subscriber id: %w", err)
		}
	}

	return nil
}

// Update обновляет статус и срок действия существующей подписки.
func (r *postgresSubscriberRepo) Update(ctx context.Context, sub *domain.Subscriber) error {
	sub.UpdatedAt = time.Now()

	query := `
        UPDATE subscribers SET
            status = :status,
            active_until = :active_until,
            updated_at = :updated_at
        WHERE subscription_id = :subscription_id`

	result, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, sub)
	if err != nil {
		r.log.Errorw("Failed to update subscriber in DB", "error", err, "subscriptionID", sub.SubscriptionID)
		return fmt.Errorf("repository: failed to update subscriber: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorw("Failed to get rows affected after update", "error", err, "subscriptionID", sub.SubscriptionID)
	}
	if rowsAffected == 0 {
		r.log.Warnw("Subscriber update affected 0 rows", "subscriptionID", sub.SubscriptionID)
		return domain.NewNotFoundError("subscriber", sub.SubscriptionID)
	}

	return nil
}
