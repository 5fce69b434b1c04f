package repository

import (
	"context"

	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

// CachedPlanRepository реализует PlanRepository с кешированием.
// Каталог планов неизменяемый после создания, так что кеш безопасен:
// инвалидировать нужно только список при добавлении плана.
type CachedPlanRepository struct {
	repo  PlanRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedPlanRepository создает новый репозиторий планов с кешированием.
func NewCachedPlanRepository(
	repo PlanRepository,
	cache *RedisCacheRepository,
	log *logger.Logger,
) PlanRepository {
	return &CachedPlanRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetByID получает план по ID (сначала из кеша, потом из БД).
func (r *CachedPlanRepository) GetByID(ctx context.Context, id int64) (*domain.SubscriptionPlan, error) {
	cached, err := r.cache.GetCachedPlan(ctx, id)
	if err != nil {
		r.log.Warnw("Error getting plan from cache", "error", err, "planID", id)
		// Продолжаем выполнение при ошибке кеша
	}
	if cached != nil {
		return cached, nil
	}

	plan, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CachePlan(ctx, plan); err != nil {
		r.log.Warnw("Failed to cache plan after fetching", "error", err, "planID", id)
	}

	return plan, nil
}

// List получает все планы (сначала из кеша, потом из БД).
func (r *CachedPlanRepository) List(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	cached, err := r.cache.GetCachedPlanList(ctx)
	if err != nil {
		r.log.Warnw("Error getting plan list from cache", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	plans, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.CachePlanList(ctx, plans); err != nil {
		r.log.Warnw("Failed to cache plan list after fetching", "error", err)
	}

	return plans, nil
}

// Create сохраняет план в БД, кеширует его и сбрасывает кеш списка.
func (r *CachedPlanRepository) Create(ctx context.Context, plan *domain.SubscriptionPlan) error {
	if err := r.repo.Create(ctx, plan); err != nil {
		return err
	}

	if err := r.cache.CachePlan(ctx, plan); err != nil {
		r.log.Warnw("Failed to cache plan after creation", "error", err, "planID", plan.ID)
	}
	if err := r.cache.InvalidatePlanListCache(ctx); err != nil {
		r.log.Warnw("Failed to invalidate plan list cache", "error", err)
	}

	return nil
}
