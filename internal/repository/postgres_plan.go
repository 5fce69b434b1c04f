package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

const planColumns = `
    id, plan_name, price, currency, payment_frequency,
    characters, minutes, team_members,
    gpt_3_turbo_credits, gpt_4_turbo_credits, gpt_4_credits,
    gpt_4o_credits, gpt_4o_mini_credits,
    claude_3_opus_credits, claude_3_sonnet_credits, claude_3_haiku_credits,
    gemini_pro_credits, fine_tune_credits, dalle_images, sd_images,
    created_at, updated_at`

// postgresPlanRepo реализует PlanRepository для PostgreSQL.
type postgresPlanRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresPlanRepository создает новый экземпляр репозитория планов.
func NewPostgresPlanRepository(db *sqlx.DB, log *logger.Logger) PlanRepository {
	return &postgresPlanRepo{
		db:  db,
		log: log,
	}
}

// GetByID возвращает план по его ID.
func (r *postgresPlanRepo) GetByID(ctx context.Context, id int64) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`

	err := sqlx.GetContext(ctx, ext(ctx, r.db), &plan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnw("Plan not found", "planID", id)
			return nil, domain.NewNotFoundError("subscription plan", strconv.FormatInt(id, 10))
		}
		r.log.Errorw("Failed to get plan from DB", "error", err, "planID", id)
		return nil, fmt.Errorf("repository: failed to get plan: %w", err)
	}

	return &plan, nil
}

// List возвращает все планы каталога.
func (r *postgresPlanRepo) List(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	var plans []domain.SubscriptionPlan
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY price ASC`

	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &plans, query)
	if err != nil {
		r.log.Errorw("Failed to list plans from DB", "error", err)
		return nil, fmt.Errorf("repository: failed to list plans: %w", err)
	}

	return plans, nil
}

// Create сохраняет новый план в каталоге.
func (r *postgresPlanRepo) Create(ctx context.Context, plan *domain.SubscriptionPlan) error {
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	query := `
        INSERT INTO subscription_plans (
            plan_name, price, currency, payment_frequency,
            characters, minutes, team_members,
            gpt_3_turbo_credits, gpt_4_turbo_credits, gpt_4_credits,
            gpt_4o_credits, gpt_4o_mini_credits,
            claude_3_opus_credits, claude_3_sonnet_credits, claude_3_haiku_credits,
            gemini_pro_credits, fine_tune_credits, dalle_images, sd_images,
            created_at, updated_at
        ) VALUES (
            :plan_name, :price, :currency, :payment_frequency,
            :characters, :minutes, :team_members,
            :gpt_3_turbo_credits, :gpt_4_turbo_credits, :gpt_4_credits,
            :gpt_4o_credits, :gpt_4o_mini_credits,
            :claude_3_opus_credits, :claude_3_sonnet_credits, :claude_3_haiku_credits,
            :gemini_pro_credits, :fine_tune_credits, :dalle_images, :sd_images,
            :created_at, :updated_at
        ) RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, ext(ctx, r.db), query, plan)
	if err != nil {
		r.log.Errorw("Failed to create plan in DB", "error", err, "planName", plan.PlanName)
		return fmt.Errorf("repository: failed to create plan: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&plan.ID); err != nil {
			return fmt.Errorf("repository: failed to scan plan id: %w", err)
		}
	}

	return nil
}
