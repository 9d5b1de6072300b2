package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tropicaldog17/dealwatch/internal/logger"
	"github.com/tropicaldog17/dealwatch/internal/models"
)

type trendService struct {
	client BackendClient
	cache  TrendCacheService
	clock  Clock
	logger *zap.Logger
}

// NewTrendService wires the trend aggregator to the backend. cache may be nil.
func NewTrendService(client BackendClient, cache TrendCacheService, clock Clock, log *zap.Logger) TrendService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &trendService{
		client: client,
		cache:  cache,
		clock:  clock,
		logger: logger.OrNop(log),
	}
}

// GetTrendView fetches (or reuses) the raw samples of a product and builds its
// chart view against currentPrice. Today is read from the clock on every call.
func (s *trendService) GetTrendView(ctx context.Context, activityID string, currentPrice decimal.Decimal) (*models.TrendView, error) {
	points, err := s.points(ctx, activityID)
	if err != nil {
		return nil, err
	}

	raw, dropped := models.ParsePriceTrend(points)
	if dropped > 0 {
		s.logger.Warn("dropped malformed trend samples",
			zap.String("activity_id", activityID),
			zap.Int("dropped", dropped),
			zap.Int("total", len(points)),
		)
	}

	view := models.BuildTrendView(raw, s.clock.Now(), currentPrice)
	view.Dropped = dropped
	return view, nil
}

func (s *trendService) Invalidate(activityID string) {
	if s.cache != nil {
		s.cache.Invalidate(activityID)
	}
}

func (s *trendService) points(ctx context.Context, activityID string) ([]models.PriceTrendPoint, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(activityID); ok {
			return cached, nil
		}
	}

	points, err := s.client.GetPriceTrend(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(activityID, points)
	}
	return points, nil
}
