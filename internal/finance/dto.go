package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/enums"
)

// Report summarizes realized revenue over an optional window.
type Report struct {
	Start             *time.Time          `json:"start,omitempty"`
	End               *time.Time          `json:"end,omitempty"`
	TotalRevenue      decimal.Decimal     `json:"totalRevenue"`
	TotalCommissions  decimal.Decimal     `json:"totalCommissions"`
	NetAmount         decimal.Decimal     `json:"netAmount"`
	OrderCount        int                 `json:"orderCount"`
	CommissionPercent decimal.Decimal     `json:"commissionPercent"`
	ByCurrency        []CurrencyBreakdown `json:"byCurrency"`
}

// CurrencyBreakdown is the report restricted to one billing currency.
type CurrencyBreakdown struct {
	Currency         enums.Currency  `json:"currency"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalCommissions decimal.Decimal `json:"totalCommissions"`
	NetAmount        decimal.Decimal `json:"netAmount"`
	OrderCount       int             `json:"orderCount"`
}

// Summary feeds the admin dashboard.
type Summary struct {
	TotalOrders         int64                       `json:"totalOrders"`
	OrdersByStatus      map[enums.OrderStatus]int64 `json:"ordersByStatus"`
	PendingReview       int64                       `json:"pendingReview"`
	PaymentsUnderReview int64                       `json:"paymentsUnderReview"`
	TotalRevenue        decimal.Decimal             `json:"totalRevenue"`
	RevenueByCurrency   map[enums.Currency]string   `json:"revenueByCurrency"`
	Currency            string                      `json:"currency"`
}
