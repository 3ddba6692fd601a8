package finance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

// MixedCurrency labels totals that add JOD and DZD amounts together.
const MixedCurrency = "MIXED"

var hundred = decimal.NewFromInt(100)

type settingsReader interface {
	Get(ctx context.Context) (*models.Setting, error)
}

// Service produces revenue reports and the dashboard summary.
type Service interface {
	RevenueReport(ctx context.Context, start, end *time.Time) (*Report, error)
	DashboardSummary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo     Repository
	settings settingsReader
}

// NewService builds the finance service.
func NewService(repo Repository, settings settingsReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("finance repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	return &service{repo: repo, settings: settings}, nil
}

type accumulator struct {
	revenue decimal.Decimal
	count   int
}

// RevenueReport sums realized orders at the current commission rate. Amounts
// stay unrounded until the totals are computed.
func (s *service) RevenueReport(ctx context.Context, start, end *time.Time) (*Report, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start must not be after end")
	}
	setting, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListRealized(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load realized orders")
	}

	pct := setting.CommissionPercent
	total := accumulator{revenue: decimal.Zero}
	perCurrency := map[enums.Currency]*accumulator{}
	for _, order := range rows {
		amount := order.RealizedAmount()
		total.revenue = total.revenue.Add(amount)
		total.count++
		acc, ok := perCurrency[order.Currency]
		if !ok {
			acc = &accumulator{revenue: decimal.Zero}
			perCurrency[order.Currency] = acc
		}
		acc.revenue = acc.revenue.Add(amount)
		acc.count++
	}

	revenue, commissions, net := totals(total.revenue, pct)
	report := &Report{
		Start:             start,
		End:               end,
		TotalRevenue:      revenue,
		TotalCommissions:  commissions,
		NetAmount:         net,
		OrderCount:        total.count,
		CommissionPercent: pct,
		ByCurrency:        make([]CurrencyBreakdown, 0, len(perCurrency)),
	}
	for currency, acc := range perCurrency {
		revenue, commissions, net := totals(acc.revenue, pct)
		report.ByCurrency = append(report.ByCurrency, CurrencyBreakdown{
			Currency:         currency,
			TotalRevenue:     revenue,
			TotalCommissions: commissions,
			NetAmount:        net,
			OrderCount:       acc.count,
		})
	}
	sort.Slice(report.ByCurrency, func(i, j int) bool {
		return report.ByCurrency[i].Currency < report.ByCurrency[j].Currency
	})
	return report, nil
}

func totals(revenue, pct decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	commissions := revenue.Mul(pct).Div(hundred)
	return revenue.Round(2), commissions.Round(2), revenue.Sub(commissions).Round(2)
}

func (s *service) DashboardSummary(ctx context.Context) (*Summary, error) {
	byStatus, err := s.repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "count orders")
	}
	underReview, err := s.repo.CountPaymentsByStatus(ctx, enums.PaymentStatusUnderReview)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "count payments")
	}
	realized, err := s.repo.ListRealized(ctx, nil, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load realized orders")
	}

	summary := &Summary{
		OrdersByStatus:      make(map[enums.OrderStatus]int64, len(enums.OrderStatuses())),
		PendingReview:       byStatus[enums.OrderStatusPendingReview],
		PaymentsUnderReview: underReview,
		RevenueByCurrency:   map[enums.Currency]string{},
		Currency:            MixedCurrency,
	}
	for _, status := range enums.OrderStatuses() {
		summary.OrdersByStatus[status] = byStatus[status]
		summary.TotalOrders += byStatus[status]
	}

	revenue := decimal.Zero
	perCurrency := map[enums.Currency]decimal.Decimal{}
	for _, order := range realized {
		amount := order.RealizedAmount()
		revenue = revenue.Add(amount)
		perCurrency[order.Currency] = perCurrency[order.Currency].Add(amount)
	}
	summary.TotalRevenue = revenue.Round(2)
	for currency, amount := range perCurrency {
		summary.RevenueByCurrency[currency] = amount.StringFixed(2)
	}
	return summary, nil
}
