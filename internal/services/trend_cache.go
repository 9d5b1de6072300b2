package services

import (
	"sync"
	"time"

	"github.com/tropicaldog17/dealwatch/internal/models"
)

type trendCacheEntry struct {
	points    []models.PriceTrendPoint
	fetchedAt time.Time
}

// TrendCacheImpl keeps raw trend samples in memory for ttl.
type TrendCacheImpl struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]trendCacheEntry
}

// NewTrendCache creates a cache; a ttl of zero disables caching.
func NewTrendCache(ttl time.Duration, clock Clock) TrendCacheService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TrendCacheImpl{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]trendCacheEntry),
	}
}

func (c *TrendCacheImpl) Get(activityID string) ([]models.PriceTrendPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[activityID]
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, activityID)
		return nil, false
	}
	return copyPoints(e.points), true
}

func (c *TrendCacheImpl) Put(activityID string, points []models.PriceTrendPoint) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[activityID] = trendCacheEntry{points: copyPoints(points), fetchedAt: c.clock.Now()}
}

func copyPoints(points []models.PriceTrendPoint) []models.PriceTrendPoint {
	out := make([]models.PriceTrendPoint, len(points))
	copy(out, points)
	return out
}

func (c *TrendCacheImpl) Invalidate(activityID string) {
	c.mu.Lock()
	delete(c.entries, activityID)
	c.mu.Unlock()
}
