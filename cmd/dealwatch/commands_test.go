package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/dealwatch/internal/config"
	apperrors "github.com/tropicaldog17/dealwatch/internal/errors"
	"github.com/tropicaldog17/dealwatch/internal/models"
	"github.com/tropicaldog17/dealwatch/internal/services"
)

type stubClient struct {
	products []*models.Product
	trend    []models.PriceTrendPoint
	created  map[string]decimal.Decimal
}

func (s *stubClient) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	return s.products, nil
}
func (s *stubClient) GetPriceTrend(ctx context.Context, activityID string) ([]models.PriceTrendPoint, error) {
	return s.trend, nil
}
func (s *stubClient) BlockProduct(ctx context.Context, activityID string) error   { return nil }
func (s *stubClient) UnblockProduct(ctx context.Context, activityID string) error { return nil }
func (s *stubClient) ListBlockedProducts(ctx context.Context) ([]*models.Product, error) {
	return nil, nil
}
func (s *stubClient) CreateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error {
	s.created[activityID] = targetPrice
	return nil
}
func (s *stubClient) UpdateNotification(ctx context.Context, activityID string, targetPrice decimal.Decimal) error {
	s.created[activityID] = targetPrice
	return nil
}
func (s *stubClient) DeleteNotification(ctx context.Context, activityID string) error {
	delete(s.created, activityID)
	return nil
}
func (s *stubClient) GetSystemStatus(ctx context.Context) (*models.SystemStatus, error) {
	return &models.SystemStatus{Sync: models.SyncStatus{Status: "success", IsHealthy: true}}, nil
}
func (s *stubClient) TestPush(ctx context.Context, userKey string) error { return nil }

func newTestApp(client *stubClient, now time.Time) (*app, *bytes.Buffer) {
	out := &bytes.Buffer{}
	clock := services.NewFixedClock(now)
	return &app{
		cfg:    config.Default(),
		client: client,
		trends: services.NewTrendService(client, nil, clock, nil),
		alerts: services.NewAlertService(client, nil),
		out:    out,
	}, out
}

func TestRun_TrendPrintsSeriesAndDiscount(t *testing.T) {
	client := &stubClient{
		products: []*models.Product{{ActivityID: "a1", CurrentPrice: decimal.NewFromInt(10)}},
		trend: []models.PriceTrendPoint{
			{Date: "2024-06-09", Price: decimal.NewFromInt(14)},
			{Date: "2024-06-10", Price: decimal.NewFromInt(12)},
			{Date: "2024-06-10T18:00:00", Price: decimal.NewFromInt(15)},
		},
	}
	a, out := newTestApp(client, time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC))

	require.NoError(t, a.run(context.Background(), []string{"trend", "a1"}))
	text := out.String()
	assert.Contains(t, text, "06-09  ¥14.00")
	assert.Contains(t, text, "06-10  ¥10.00")
	assert.Contains(t, text, "最低 ¥10.00  最高 ¥14.00  变化 -4.00")
	assert.Contains(t, text, "今日最高 ¥15.00，现价低 33%")
}

func TestRun_TrendEmpty(t *testing.T) {
	a, out := newTestApp(&stubClient{}, time.Now())
	require.NoError(t, a.run(context.Background(), []string{"trend", "-price", "5", "zz"}))
	assert.Contains(t, out.String(), "暂无价格趋势数据")
}

func TestRun_AlertSetWithPreset(t *testing.T) {
	client := &stubClient{
		products: []*models.Product{{ActivityID: "a1", CurrentPrice: decimal.NewFromInt(60)}},
		created:  map[string]decimal.Decimal{},
	}
	a, out := newTestApp(client, time.Now())

	require.NoError(t, a.run(context.Background(), []string{"alert", "set", "a1", "-preset", "0.5"}))
	assert.True(t, client.created["a1"].Equal(decimal.NewFromInt(30)))
	assert.Contains(t, out.String(), "目标价 ¥30.00，比现价低 ¥30.00 (-50%)")
	assert.Contains(t, out.String(), "监控已设置")

	require.NoError(t, a.run(context.Background(), []string{"alert", "delete", "a1"}))
	assert.Empty(t, client.created)
}

func TestRun_AlertRejectsTooLowPrice(t *testing.T) {
	client := &stubClient{
		products: []*models.Product{{ActivityID: "a1", CurrentPrice: decimal.NewFromInt(100)}},
		created:  map[string]decimal.Decimal{},
	}
	a, _ := newTestApp(client, time.Now())

	err := a.run(context.Background(), []string{"alert", "set", "a1", "-price", "9"})
	v, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "TOO_LOW", v.Code)
	assert.Empty(t, client.created)

	err = a.run(context.Background(), []string{"alert", "set", "a1", "-preset", "0.4"})
	_, ok = apperrors.AsValidation(err)
	assert.True(t, ok)
}

func TestRun_Usage(t *testing.T) {
	a, _ := newTestApp(&stubClient{}, time.Now())
	assert.Equal(t, errUsage, a.run(context.Background(), nil))
	assert.Equal(t, errUsage, a.run(context.Background(), []string{"fly"}))
	assert.Equal(t, errUsage, a.run(context.Background(), []string{"block"}))
}

func TestRun_RejectsExponentFlags(t *testing.T) {
	client := &stubClient{
		products: []*models.Product{{ActivityID: "a1", CurrentPrice: decimal.NewFromInt(100)}},
		created:  map[string]decimal.Decimal{},
	}
	a, _ := newTestApp(client, time.Now())
	ctx := context.Background()

	err := a.run(ctx, []string{"trend", "-price", "1e-2000000000", "a1"})
	v, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_NUMBER", v.Code)

	err = a.run(ctx, []string{"alert", "set", "a1", "-price", "1e-2000000000"})
	v, ok = apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_NUMBER", v.Code)

	err = a.run(ctx, []string{"alert", "set", "a1", "-preset", "5e-1"})
	_, ok = apperrors.AsValidation(err)
	assert.True(t, ok)
	assert.Empty(t, client.created)
}

func TestPrintTrend_ConcurrentReportsDoNotInterleave(t *testing.T) {
	a, out := newTestApp(&stubClient{}, time.Now())
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	view := models.BuildTrendView([]models.PriceObservation{
		{Date: now.AddDate(0, 0, -1), Price: decimal.NewFromInt(14)},
		{Date: now, Price: decimal.NewFromInt(12)},
	}, now, decimal.NewFromInt(12))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.printTrend("a1", view)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 60)
	for i := 0; i < len(lines); i += 3 {
		assert.Equal(t, "06-09  ¥14.00", lines[i])
		assert.Equal(t, "06-10  ¥12.00", lines[i+1])
		assert.True(t, strings.HasPrefix(lines[i+2], "最低 "), lines[i+2])
	}
}
