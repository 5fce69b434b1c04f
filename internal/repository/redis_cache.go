package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/pkg/logger"
)

const (
	// Префиксы ключей для различных типов данных
	planKeyPrefix = "plan:"
	planListKey   = "plans:all"

	// TTL для кэша
	defaultCacheTTL = 15 * time.Minute
)

// RedisCacheRepository реализует кеширование каталога планов в Redis.
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository создает новый экземпляр Redis репозитория.
func NewRedisCacheRepository(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &RedisCacheRepository{
		client: client,
		log:    log,
	}, nil
}

// Close закрывает соединение с Redis.
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

// CachePlan кеширует план в Redis.
func (r *RedisCacheRepository) CachePlan(ctx context.Context, plan *domain.SubscriptionPlan) error {
	key := fmt.Sprintf("%s%d", planKeyPrefix, plan.ID)

	data, err := json.Marshal(plan)
	if err != nil {
		r.log.Errorw("Failed to marshal plan for caching", "error", err, "planID", plan.ID)
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := r.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache plan in Redis", "error", err, "planID", plan.ID)
		return fmt.Errorf("failed to cache plan: %w", err)
	}

	return nil
}

// GetCachedPlan получает план из кеша. Возвращает nil без ошибки при
// промахе кеша.
func (r *RedisCacheRepository) GetCachedPlan(ctx context.Context, id int64) (*domain.SubscriptionPlan, error) {
	key := fmt.Sprintf("%s%d", planKeyPrefix, id)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.log.Errorw("Failed to get plan from Redis", "error", err, "planID", id)
		return nil, fmt.Errorf("failed to get cached plan: %w", err)
	}

	var plan domain.SubscriptionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		r.log.Errorw("Failed to unmarshal cached plan", "error", err, "planID", id)
		return nil, fmt.Errorf("failed to unmarshal cached plan: %w", err)
	}

	return &plan, nil
}

// InvalidatePlanListCache сбрасывает кеш списка планов.
func (r *RedisCacheRepository) InvalidatePlanListCache(ctx context.Context) error {
	if err := r.client.Del(ctx, planListKey).Err(); err != nil {
		r.log.Errorw("Failed to invalidate plan list cache", "error", err)
		return fmt.Errorf("failed to invalidate plan list cache: %w", err)
	}
	return nil
}

// CachePlanList кеширует список планов.
func (r *RedisCacheRepository) CachePlanList(ctx context.Context, plans []domain.SubscriptionPlan) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("failed to marshal plan list: %w", err)
	}

	if err := r.client.Set(ctx, planListKey, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache plan list in Redis", "error", err)
		return fmt.Errorf("failed to cache plan list: %w", err)
	}

	return nil
}

// GetCachedPlanList получает список планов из кеша. Возвращает nil без
// ошибки при промахе.
func (r *RedisCacheRepository) GetCachedPlanList(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	data, err := r.client.Get(ctx, planListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.log.Errorw("Failed to get plan list from Redis", "error", err)
		return nil, fmt.Errorf("failed to get cached plan list: %w", err)
	}

	var plans []domain.SubscriptionPlan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached plan list: %w", err)
	}

	return plans, nil
}
