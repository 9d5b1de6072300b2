package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tropicaldog17/dealwatch/internal/models"
)

// ---- In-memory BackendClient used in unit tests ----

type savedAlert struct {
	activityID  string
	targetPrice decimal.Decimal
	update      bool
}

type mockBackendClient struct {
	mu         sync.Mutex
	trends     map[string][]models.PriceTrendPoint
	trendCalls int
	trendErr   error
	saveErr    error
	saved      []savedAlert
	deleted    []string
}

func newMockBackendClient() *mockBackendClient {
	return &mockBackendClient{trends: make(map[string][]models.PriceTrendPoint)}
}

func (m *mockBackendClient) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	return nil, nil
}
func (m *mockBackendClient) GetPriceTrend(ctx context.Context, activityID string) ([]models.PriceTrendPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trendCalls++
	if m.trendErr != nil {
		return nil, m.trendErr
	}
	return m.trends[activityID], nil
}
func (m *mockBackendClient) BlockProduct(ctx context.Context, activityID string) error   { return nil }
func (m *mockBackendClient) UnblockProduct(ctx context.Context, activityID string) error { return nil }
func (m *mockBackendClient) ListBlockedProducts(ctx context.Context) ([]*models.Product, error) {
	return nil, nil
}
func (m *mockBackendClient) CreateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error {
	return m.save(activityID, targetPrice, false)
}
func (m *mockBackendClient) UpdateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error {
	return m.save(activityID, targetPrice, true)
}
func (m *mockBackendClient) DeleteNotification(ctx context.Context, activityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, activityID)
	return nil
}
func (m *mockBackendClient) GetSystemStatus(ctx context.Context) (*models.SystemStatus, error) {
	return &models.SystemStatus{}, nil
}
func (m *mockBackendClient) TestPush(ctx context.Context, userKey string) error { return nil }

func (m *mockBackendClient) save(activityID string, price decimal.Decimal, update bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, savedAlert{activityID: activityID, targetPrice: price, update: update})
	return nil
}

func (m *mockBackendClient) setTrend(activityID string, points ...models.PriceTrendPoint) {
	m.mu.Lock()
	m.trends[activityID] = points
	m.mu.Unlock()
}

func (m *mockBackendClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trendCalls
}
