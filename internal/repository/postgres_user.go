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

// postgresUserRepo реализует UserRepository для PostgreSQL.
type postgresUserRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresUserRepository создает новый экземпляр репозитория пользователей.
func NewPostgresUserRepository(db *sqlx.DB, log *logger.Logger) UserRepository {
	return &postgresUserRepo{
		db:  db,
		log: log,
	}
}

// GetByID возвращает пользователя по его ID.
// Колонки available_dalle_images/available_sd_images таблицы пользователей
// читаются в общие поля грантов через алиасы.
func (r *postgresUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	query := `
        SELECT id, email, "group", plan_id, member_limit,
               available_chars, available_minutes,
               gpt_3_turbo_credits, gpt_4_turbo_credits, gpt_4_credits,
               gpt_4o_credits, gpt_4o_mini_credits,
               claude_3_opus_credits, claude_3_sonnet_credits, claude_3_haiku_credits,
               gemini_pro_credits, fine_tune_credits,
               available_dalle_images AS dalle_images,
               available_sd_images AS sd_images,
               created_at, updated_at
        FROM users
        WHERE id = $1`

	err := sqlx.GetContext(ctx, ext(ctx, r.db), &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnw("User not found", "userID", id)
			return nil, domain.NewNotFoundError("user", strconv.FormatInt(id, 10))
		}
		r.log.Errorw("Failed to get user from DB", "error", err, "userID", id)
		return nil, fmt.Errorf("repository: failed to get user: %w", err)
	}

	return &user, nil
}

// Update сохраняет роль, план и кредитные поля пользователя.
func (r *postgresUserRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	query := `
        UPDATE users SET
            "group" = :group,
            plan_id = :plan_id,
            member_limit = :member_limit,
            available_chars = :available_chars,
            available_minutes = :available_minutes,
            gpt_3_turbo_credits = :gpt_3_turbo_credits,
            gpt_4_turbo_credits = :gpt_4_turbo_credits,
            gpt_4_credits = :gpt_4_credits,
            gpt_4o_credits = :gpt_4o_credits,
            gpt_4o_mini_credits = :gpt_4o_mini_credits,
            claude_3_opus_credits = :claude_3_opus_credits,
            claude_3_sonnet_credits = :claude_3_sonnet_credits,
            claude_3_haiku_credits = :claude_3_haiku_credits,
            gemini_pro_credits = :gemini_pro_credits,
            fine_tune_credits = :fine_tune_credits,
            available_dalle_images = :dalle_images,
            available_sd_images = :sd_images,
            updated_at = :updated_at
        WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, ext(ctx, r.db), query, user)
	if err != nil {
		r.log.Errorw("Failed to update user in DB", "error", err, "userID", user.ID)
		return fmt.Errorf("repository: failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorw("Failed to get rows affected after user update", "error", err, "userID", user.ID)
	}
	if rowsAffected == 0 {
		r.log.Warnw("User update affected 0 rows", "userID", user.ID)
		return domain.NewNotFoundError("user", strconv.FormatInt(user.ID, 10))
	}

	return nil
}
