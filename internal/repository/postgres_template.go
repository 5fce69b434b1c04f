package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

// postgresTemplateRepo реализует TemplateRepository для PostgreSQL.
type postgresTemplateRepo struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewPostgresTemplateRepository создает новый экземпляр репозитория шаблонов.
func NewPostgresTemplateRepository(db *sqlx.DB, log *logger.Logger) TemplateRepository {
	return &postgresTemplateRepo{
		db:  db,
		log: log,
	}
}

// List возвращает активные шаблоны каталога.
func (r *postgresTemplateRepo) List(ctx context.Context) ([]domain.Template, error) {
	var templates []domain.Template
	query := `
        SELECT id, template_code, name, type, icon, package, new, active, created_at
        FROM templates
        WHERE active = true
        ORDER BY name ASC`

	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &templates, query)
	if err != nil {
		r.log.Errorw("Failed to list templates from DB", "error", err)
		return nil, fmt.Errorf("repository: failed to list templates: %w", err)
	}

	return templates, nil
}
