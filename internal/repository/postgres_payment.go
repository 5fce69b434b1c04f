package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

// postgresPaymentRepo реализует PaymentRepository для PostgreSQL.
type postgresPaymentRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresPaymentRepository создает новый экземпляр репозитория платежей.
func NewPostgresPaymentRepository(db *sqlx.DB, log *logger.Logger) PaymentRepository {
	return &postgresPaymentRepo{
		db:  db,
		log: log,
	}
}

// Create добавляет строку в журнал платежей. Строка после вставки
// никогда не изменяется.
func (r *postgresPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()

	query := `
        INSERT INTO payments (
            id, user_id, plan_id, order_id, plan_name, price, currency,
            gateway, frequency, status,
            gpt_3_turbo_credits, gpt_4_turbo_credits, gpt_4_credits,
            gpt_4o_credits, gpt_4o_mini_credits,
            claude_3_opus_credits, claude_3_sonnet_credits, claude_3_haiku_credits,
            gemini_pro_credits, fine_tune_credits, dalle_images, sd_images,
            created_at
        ) VALUES (
            :id, :user_id, :plan_id, :order_id, :plan_name, :price, :currency,
            :gateway, :frequency, :status,
            :gpt_3_turbo_credits, :gpt_4_turbo_credits, :gpt_4_credits,
            :gpt_4o_credits, :gpt_4o_mini_credits,
            :claude_3_opus_credits, :claude_3_sonnet_credits, :claude_3_haiku_credits,
            :gemini_pro_credits, :fine_tune_credits, :dalle_images, :sd_images,
            :created_at
        )`

	_, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, payment)
	if err != nil {
		r.log.Errorw("Failed to create payment in DB", "error", err, "userID", payment.UserID, "planID", payment.PlanID)
		return fmt.Errorf("repository: failed to create payment: %w", err)
	}

	r.log.Debugw("Payment recorded", "paymentID", payment.ID, "userID", payment.UserID)
	return nil
}

// GetByUserID возвращает все платежи пользователя, новые первыми.
func (r *postgresPaymentRepo) GetByUserID(ctx context.Context, userID int64) ([]domain.Payment, error) {
	var payments []domain.Payment
	query := `
        SELECT id, user_id, plan_id, order_id, plan_name, price, currency,
               gateway, frequency, status,
               gpt_3_turbo_credits, gpt_4_turbo_credits, gpt_4_credits,
               gpt_4o_credits, gpt_4o_mini_credits,
               claude_3_opus_credits, claude_3_sonnet_credits, claude_3_haiku_credits,
               gemini_pro_credits, fine_tune_credits, dalle_images, sd_images,
               created_at
        FROM payments
        WHERE user_id = $1
        ORDER BY created_at DESC`

	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &payments, query, userID)
	if err != nil {
		r.log.Errorw("Failed to get payments by user ID from DB", "error", err, "userID", userID)
		return nil, fmt.Errorf("repository: failed to get payments by user ID: %w", err)
	}

	return payments, nil
}

// HasCompletedPayment сообщает, есть ли у пользователя завершенный платеж.
func (r *postgresPaymentRepo) HasCompletedPayment(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE user_id = $1 AND status = $2)`

	err := sqlx.GetContext(ctx, ext(ctx, r.db), &exists, query, userID, domain.PaymentStatusCompleted)
	if err != nil {
		r.log.Errorw("Failed to check completed payments", "error", err, "userID", userID)
		return false, fmt.Errorf("repository: failed to check completed payments: %w", err)
	}

	return exists, nil
}
