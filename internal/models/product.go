package models

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// Sales status values reported by the backend.
const (
	SalesStatusSoldOut = 0
	SalesStatusOnSale  = 1
)

// Product is a deal listed on one of the delivery platforms.
type Product struct {
	ID                 int64            `json:"id"`
	ActivityID         string           `json:"activityId"`
	Platform           string           `json:"platform"`
	Region             string           `json:"region"`
	Title              string           `json:"title"`
	ShopName           string           `json:"shopName"`
	OriginalPrice      decimal.Decimal  `json:"originalPrice"`
	CurrentPrice       decimal.Decimal  `json:"currentPrice"`
	SalesStatus        int              `json:"salesStatus"`
	SalesStatusText    string           `json:"salesStatusText"`
	ActivityCreateTime time.Time        `json:"activityCreateTime"`
	CreateTime         time.Time        `json:"createTime"`
	UpdateTime         time.Time        `json:"updateTime"`
	Discount           *decimal.Decimal `json:"discount,omitempty"`
	DropRate           *decimal.Decimal `json:"dropRate,omitempty"`
	HasNotification    bool             `json:"hasNotification"`
	TargetPrice        *decimal.Decimal `json:"targetPrice,omitempty"`
}

// IsOnSale reports whether the deal can currently be bought.
func (p *Product) IsOnSale() bool {
	return p.SalesStatus == SalesStatusOnSale
}

// ProductFilter narrows the product listing. Empty fields are not sent.
type ProductFilter struct {
	Keyword         string
	Platform        string
	Region          string
	SalesStatus     string
	MonitorStatus   string
	RecentSevenDays bool
}

// Query encodes the filter as listing query parameters.
func (f *ProductFilter) Query() url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("keyword", f.Keyword)
	set("platform", f.Platform)
	set("region", f.Region)
	set("salesStatus", f.SalesStatus)
	set("monitorStatus", f.MonitorStatus)
	if f.RecentSevenDays {
		q.Set("recentSevenDays", "true")
	}
	return q
}

// CreateNotificationRequest is the body of an alert creation.
type CreateNotificationRequest struct {
	ActivityID  string          `json:"activityId"`
	TargetPrice decimal.Decimal `json:"targetPrice"`
}

// UpdateNotificationRequest is the body of an alert update.
type UpdateNotificationRequest struct {
	TargetPrice decimal.Decimal `json:"targetPrice"`
}

// MarshalJSON sends the price as a bare JSON number, which is what the backend binds.
func (r CreateNotificationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ActivityID  string      `json:"activityId"`
		TargetPrice json.Number `json:"targetPrice"`
	}{r.ActivityID, json.Number(r.TargetPrice.String())})
}

func (r UpdateNotificationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TargetPrice json.Number `json:"targetPrice"`
	}{json.Number(r.TargetPrice.String())})
}
