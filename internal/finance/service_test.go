package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/db/dbtest"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/types"
)

type stubSettings struct {
	pct string
}

func (s stubSettings) Get(context.Context) (*models.Setting, error) {
	return &models.Setting{ID: models.SettingsSingletonID, CommissionPercent: decimal.RequireFromString(s.pct)}, nil
}

type seed struct {
	status    enums.OrderStatus
	currency  enums.Currency
	estimated string
	final     string
	createdAt time.Time
}

func seedOrders(t *testing.T, db *gorm.DB, seeds []seed) []models.Order {
	t.Helper()
	out := make([]models.Order, 0, len(seeds))
	for i, s := range seeds {
		direction := enums.DirectionJOToDZ
		if s.currency == enums.CurrencyDZD {
			direction = enums.DirectionDZToJO
		}
		order := models.Order{
			ID:               uuid.New(),
			OrderNumber:      "TH-20260115-" + direction.OriginCode() + "-" + string(rune('A'+i)),
			UserID:           uuid.New(),
			Direction:        direction,
			Status:           s.status,
			Contents:         "goods",
			WeightDeclaredKg: decimal.NewFromInt(1),
			Currency:         s.currency,
			PriceEstimated:   decimal.RequireFromString(s.estimated),
			PriceBase:        decimal.RequireFromString(s.estimated),
			PriceCommission:  decimal.Zero,
			PriceDiscount:    decimal.Zero,
			SenderAddress:    types.AddressSnapshot{FullName: "a", Phone: "1", Country: "c", City: "c", AddressLine1: "l"},
			ReceiverAddress:  types.AddressSnapshot{FullName: "b", Phone: "2", Country: "c", City: "c", AddressLine1: "l"},
			CreatedAt:        s.createdAt,
		}
		if s.final != "" {
			final := decimal.RequireFromString(s.final)
			order.PriceFinal = &final
		}
		require.NoError(t, db.Create(&order).Error)
		out = append(out, order)
	}
	return out
}

var (
	midday  = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	lastSec = time.Date(2026, 1, 15, 23, 59, 59, 0, time.UTC)
	earlier = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	seedOrders(t, db, []seed{
		{enums.OrderStatusConfirmed, enums.CurrencyJOD, "10.10", "12.34", midday},
		{enums.OrderStatusShipped, enums.CurrencyJOD, "5.55", "", lastSec},
		{enums.OrderStatusDelivered, enums.CurrencyDZD, "1000.00", "", earlier},
		{enums.OrderStatusPendingReview, enums.CurrencyJOD, "99.00", "", midday},
		{enums.OrderStatusRejected, enums.CurrencyDZD, "500.00", "", midday},
	})
	svc, err := NewService(NewRepository(db), stubSettings{pct: "2.5"})
	require.NoError(t, err)
	return svc, db
}

func TestRevenueReportAllTime(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.RevenueReport(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.OrderCount)
	assert.Equal(t, "1017.89", report.TotalRevenue.StringFixed(2))
	assert.Equal(t, "25.45", report.TotalCommissions.StringFixed(2))
	assert.Equal(t, "992.44", report.NetAmount.StringFixed(2))

	require.Len(t, report.ByCurrency, 2)
	dzd, jod := report.ByCurrency[0], report.ByCurrency[1]
	assert.Equal(t, enums.CurrencyDZD, dzd.Currency)
	assert.Equal(t, "1000.00", dzd.TotalRevenue.StringFixed(2))
	assert.Equal(t, "25.00", dzd.TotalCommissions.StringFixed(2))
	assert.Equal(t, "975.00", dzd.NetAmount.StringFixed(2))
	assert.Equal(t, enums.CurrencyJOD, jod.Currency)
	assert.Equal(t, 2, jod.OrderCount)
	assert.Equal(t, "17.89", jod.TotalRevenue.StringFixed(2))
	assert.Equal(t, "0.45", jod.TotalCommissions.StringFixed(2))
	assert.Equal(t, "17.44", jod.NetAmount.StringFixed(2))
}

func TestRevenueReportWindowIsInclusive(t *testing.T) {
	svc, _ := newTestService(t)
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	end := lastSec

	report, err := svc.RevenueReport(context.Background(), &start, &end)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrderCount)
	assert.Equal(t, "17.89", report.TotalRevenue.StringFixed(2))

	onlyEarlier := earlier
	report, err = svc.RevenueReport(context.Background(), &onlyEarlier, &onlyEarlier)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrderCount)
}

func TestRevenueReportRejectsInvertedWindow(t *testing.T) {
	svc, _ := newTestService(t)
	start := midday
	end := earlier

	_, err := svc.RevenueReport(context.Background(), &start, &end)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRevenueReportEmpty(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), stubSettings{pct: "2"})
	require.NoError(t, err)

	report, err := svc.RevenueReport(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.OrderCount)
	assert.True(t, report.TotalRevenue.IsZero())
	assert.Empty(t, report.ByCurrency)
}

func TestDashboardSummary(t *testing.T) {
	svc, db := newTestService(t)
	var pending models.Order
	require.NoError(t, db.Where("status = ?", enums.OrderStatusPendingReview).First(&pending).Error)
	require.NoError(t, db.Create(&models.Payment{
		ID:       uuid.New(),
		OrderID:  pending.ID,
		Method:   enums.PaymentMethodManual,
		Amount:   decimal.NewFromInt(99),
		Currency: enums.CurrencyJOD,
		Status:   enums.PaymentStatusUnderReview,
	}).Error)

	summary, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.TotalOrders)
	assert.EqualValues(t, 1, summary.PendingReview)
	assert.EqualValues(t, 1, summary.PaymentsUnderReview)
	assert.EqualValues(t, 1, summary.OrdersByStatus[enums.OrderStatusShipped])
	assert.EqualValues(t, 0, summary.OrdersByStatus[enums.OrderStatusCancelled])
	assert.Equal(t, "1017.89", summary.TotalRevenue.StringFixed(2))
	assert.Equal(t, "17.89", summary.RevenueByCurrency[enums.CurrencyJOD])
	assert.Equal(t, "1000.00", summary.RevenueByCurrency[enums.CurrencyDZD])
	assert.Equal(t, MixedCurrency, summary.Currency)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, stubSettings{})
	require.Error(t, err)
	_, err = NewService(NewRepository(nil), nil)
	require.Error(t, err)
}
