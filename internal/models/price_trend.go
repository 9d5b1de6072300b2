package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// PriceTrendPoint is one trend sample as returned by the backend.
type PriceTrendPoint struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// PriceObservation is one recorded price of a product on a calendar day.
type PriceObservation struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// TrendSeries holds one observation per day in ascending date order.
type TrendSeries []PriceObservation

// TrendViewState is the chart's presentation state.
type TrendViewState string

const (
	TrendLoading TrendViewState = "LOADING"
	TrendEmpty   TrendViewState = "EMPTY"
	TrendReady   TrendViewState = "READY"
)

// TrendStatistics summarises a display series.
type TrendStatistics struct {
	MinPrice             decimal.Decimal  `json:"minPrice"`
	MaxPrice             decimal.Decimal  `json:"maxPrice"`
	LatestChange         decimal.Decimal  `json:"latestChange"`
	TodayPeakPrice       *decimal.Decimal `json:"todayPeakPrice"`
	TodayDiscountPercent *decimal.Decimal `json:"todayDiscountPercent"`
}

// TrendView is everything a price chart needs to render.
type TrendView struct {
	State   TrendViewState   `json:"state"`
	Series  TrendSeries      `json:"series"`
	Stats   *TrendStatistics `json:"stats,omitempty"`
	Dropped int              `json:"dropped"`
}

// CivilDay truncates t to midnight UTC of its calendar date in t's own location.
func CivilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return CivilDay(a).Equal(CivilDay(b))
}

// ParseTrendDate accepts "2006-01-02" or any date-time starting with it and
// separated by 'T' or a space. Only the date portion is kept.
func ParseTrendDate(s string) (time.Time, bool) {
	if len(s) < len(dateLayout) {
		return time.Time{}, false
	}
	if len(s) > len(dateLayout) && s[len(dateLayout)] != 'T' && s[len(dateLayout)] != ' ' {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParsePriceTrend converts backend samples into observations. Samples with an
// unparsable date or a negative price are skipped and counted in dropped.
func ParsePriceTrend(points []PriceTrendPoint) (obs []PriceObservation, dropped int) {
	obs = make([]PriceObservation, 0, len(points))
	for _, p := range points {
		d, ok := ParseTrendDate(p.Date)
		if !ok || p.Price.IsNegative() {
			dropped++
			continue
		}
		obs = append(obs, PriceObservation{Date: d, Price: p.Price})
	}
	return obs, dropped
}

// Deduplicate keeps the lowest price per calendar day and sorts by date.
func Deduplicate(raw []PriceObservation) TrendSeries {
	if len(raw) == 0 {
		return TrendSeries{}
	}

	byDay := make(map[time.Time]decimal.Decimal, len(raw))
	for _, o := range raw {
		day := CivilDay(o.Date)
		if cur, ok := byDay[day]; !ok || o.Price.LessThan(cur) {
			byDay[day] = o.Price
		}
	}

	series := make(TrendSeries, 0, len(byDay))
	for day, price := range byDay {
		series = append(series, PriceObservation{Date: day, Price: price})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// WithLiveToday replaces today's price with the live reference price. A series
// without a sample for today is returned as a copy, unchanged.
func WithLiveToday(series TrendSeries, today time.Time, reference decimal.Decimal) TrendSeries {
	out := make(TrendSeries, len(series))
	for i, o := range series {
		if SameDay(o.Date, today) {
			o.Price = reference
		}
		out[i] = o
	}
	return out
}

// ComputeTrendStatistics derives the chart summary. It returns nil for an empty
// display series. raw must be the observations before today's substitution.
func ComputeTrendStatistics(display TrendSeries, raw []PriceObservation, today time.Time, reference decimal.Decimal) *TrendStatistics {
	if len(display) == 0 {
		return nil
	}

	stats := &TrendStatistics{
		MinPrice:     display[0].Price,
		MaxPrice:     reference,
		LatestChange: decimal.Zero,
	}
	for _, o := range display {
		stats.MinPrice = decimal.Min(stats.MinPrice, o.Price)
		stats.MaxPrice = decimal.Max(stats.MaxPrice, o.Price)
	}
	if len(display) > 1 {
		stats.LatestChange = display[len(display)-1].Price.Sub(display[0].Price)
	}

	var peak *decimal.Decimal
	for _, o := range raw {
		if !SameDay(o.Date, today) {
			continue
		}
		p := o.Price
		if peak == nil || p.GreaterThan(*peak) {
			peak = &p
		}
	}
	stats.TodayPeakPrice = peak
	if peak != nil && peak.IsPositive() && peak.GreaterThan(reference) {
		pct := peak.Sub(reference).Mul(hundred).Div(*peak)
		stats.TodayDiscountPercent = &pct
	}
	return stats
}

// LoadingTrendView is shown while the raw series is being fetched.
func LoadingTrendView() *TrendView {
	return &TrendView{State: TrendLoading, Series: TrendSeries{}}
}

// BuildTrendView runs de-duplication, today substitution and statistics in one go.
func BuildTrendView(raw []PriceObservation, today time.Time, reference decimal.Decimal) *TrendView {
	deduped := Deduplicate(raw)
	if len(deduped) == 0 {
		return &TrendView{State: TrendEmpty, Series: deduped}
	}
	display := WithLiveToday(deduped, today, reference)
	return &TrendView{
		State:  TrendReady,
		Series: display,
		Stats:  ComputeTrendStatistics(display, raw, today, reference),
	}
}
