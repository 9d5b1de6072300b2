package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tropicaldog17/dealwatch/internal/models"
)

// BackendClient is the deals backend REST API.
type BackendClient interface {
	ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	GetPriceTrend(ctx context.Context, activityID string) ([]models.PriceTrendPoint, error)

	BlockProduct(ctx context.Context, activityID string) error
	UnblockProduct(ctx context.Context, activityID string) error
	ListBlockedProducts(ctx context.Context) ([]*models.Product, error)

	CreateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error
	UpdateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error
	DeleteNotification(ctx context.Context, activityID string) error

	GetSystemStatus(ctx context.Context) (*models.SystemStatus, error)
	TestPush(ctx context.Context, userKey string) error
}

// Clock tells services what time it is.
type Clock interface {
	Now() time.Time
}

// TrendCacheService stores raw trend samples per product for a short time.
type TrendCacheService interface {
	Get(activityID string) ([]models.PriceTrendPoint, bool)
	Put(activityID string, points []models.PriceTrendPoint)
	Invalidate(activityID string)
}

// TrendService turns backend trend samples into chart-ready views.
type TrendService interface {
	GetTrendView(ctx context.Context, activityID string, currentPrice decimal.Decimal) (*models.TrendView, error)
	Invalidate(activityID string)
}

// AlertService validates target prices and saves price-drop alerts.
type AlertService interface {
	Editor(product *models.Product, isEdit bool) models.TargetPriceState
	Submit(ctx context.Context, product *models.Product, state models.TargetPriceState, isEdit bool) error
	Remove(ctx context.Context, activityID string) error
}
