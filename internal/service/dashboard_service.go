package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attendease/attendease-api/internal/models"
	appErrors "github.com/attendease/attendease-api/pkg/errors"
)

type classCardRepository interface {
	ListCards(ctx context.Context, teacherID string) ([]models.ClassCard, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

func dashboardCacheKey(teacherID string) string {
	return fmt.Sprintf("dashboard:classes:%s", teacherID)
}

// DashboardService serves the class-card listing with a Redis-backed cache.
// Writes to classes, rosters, or attendance invalidate the owning teacher's
// entry.
type DashboardService struct {
	repo     classCardRepository
	cache    cacheStore
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(repo classCardRepository, cache cacheStore, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ClassCards returns the teacher's classes with roster size and class-day
// counts. Cache failures degrade to the database; they are never surfaced.
func (s *DashboardService) ClassCards(ctx context.Context, actorID string) ([]models.ClassCard, bool, error) {
	key := dashboardCacheKey(actorID)

	if s.cache != nil {
		var cached []models.ClassCard
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	cards, err := s.repo.ListCards(ctx, actorID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cards, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return cards, false, nil
}
