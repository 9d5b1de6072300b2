package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tropicaldog17/dealwatch/internal/logger"
	"github.com/tropicaldog17/dealwatch/internal/models"
	"github.com/tropicaldog17/dealwatch/internal/services"
)

// PriceLookup returns the live price of a product at the time of a tick.
type PriceLookup func(ctx context.Context, activityID string) (decimal.Decimal, error)

// ReportFunc receives every freshly built view.
type ReportFunc func(activityID string, view *models.TrendView)

// TrendWatcher periodically rebuilds the trend view of a set of products.
type TrendWatcher struct {
	cron   *cron.Cron
	trends services.TrendService
	price  PriceLookup
	report ReportFunc
	logger *zap.Logger
	ctx    context.Context

	mu      sync.Mutex
	watched []string
}

// NewTrendWatcher creates a watcher; schedules use the six-field cron syntax
// (seconds first), like "0 */10 * * * *".
func NewTrendWatcher(ctx context.Context, trends services.TrendService, price PriceLookup, report ReportFunc, log *zap.Logger) *TrendWatcher {
	return &TrendWatcher{
		cron:   cron.New(cron.WithSeconds()),
		trends: trends,
		price:  price,
		report: report,
		logger: logger.OrNop(log),
		ctx:    ctx,
	}
}

// Watch registers a product on the given schedule.
func (w *TrendWatcher) Watch(spec, activityID string) error {
	if _, err := w.cron.AddFunc(spec, func() { w.refresh(activityID) }); err != nil {
		return fmt.Errorf("register watch for %s: %w", activityID, err)
	}
	w.mu.Lock()
	w.watched = append(w.watched, activityID)
	w.mu.Unlock()
	return nil
}

// Start starts the cron scheduler.
func (w *TrendWatcher) Start() {
	w.cron.Start()
	w.logger.Info("trend watcher started", zap.Int("products", len(w.Watched())))
}

// Stop stops the scheduler and waits for running refreshes.
func (w *TrendWatcher) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("trend watcher stopped")
}

// RunNow refreshes every watched product immediately.
func (w *TrendWatcher) RunNow() {
	for _, id := range w.Watched() {
		w.refresh(id)
	}
}

// Watched lists the registered products in registration order.
func (w *TrendWatcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.watched))
	copy(out, w.watched)
	return out
}

func (w *TrendWatcher) refresh(activityID string) {
	price, err := w.price(w.ctx, activityID)
	if err != nil {
		w.logger.Error("price lookup failed", zap.String("activity_id", activityID), zap.Error(err))
		return
	}

	w.trends.Invalidate(activityID)
	view, err := w.trends.GetTrendView(w.ctx, activityID, price)
	if err != nil {
		w.logger.Error("trend refresh failed", zap.String("activity_id", activityID), zap.Error(err))
		return
	}
	w.report(activityID, view)
}
