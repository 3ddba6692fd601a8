package orders

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/internal/pricing"
	"github.com/thouesa/thouesa-backend/internal/sequence"
	"github.com/thouesa/thouesa-backend/internal/settings"
	dbpkg "github.com/thouesa/thouesa-backend/pkg/db"
	"github.com/thouesa/thouesa-backend/pkg/db/dbtest"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/metrics"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/types"
)

type fixture struct {
	db      *gorm.DB
	client  *dbpkg.Client
	repo    Repository
	outbox  *outbox.Service
	engine  *Engine
	svc     Service
	reg     *prometheus.Registry
	metrics *metrics.OrderMetrics
	logs    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, nil)
}

// newFixtureWithRepo wires the service on SQLite; wrap lets a test decorate
// the repository.
func newFixtureWithRepo(t *testing.T, wrap func(Repository) Repository) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Level: logger.ParseLevel("debug"), Output: buf})

	settingsSvc, err := settings.NewService(settings.NewRepository(conn), settings.Defaults{
		JODPerKgJOToDZ:    decimal.RequireFromString("4.5"),
		DZDPerKgDZToJO:    decimal.RequireFromString("1100"),
		CommissionPercent: decimal.RequireFromString("2"),
	})
	require.NoError(t, err)
	pricingEngine, err := pricing.NewEngine(settingsSvc, pricing.NewRepository(conn))
	require.NoError(t, err)
	numbers, err := sequence.NewGenerator(sequence.NewRepository(conn))
	require.NoError(t, err)

	repo := NewRepository(conn)
	if wrap != nil {
		repo = wrap(repo)
	}
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	reg := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(reg)

	engine, err := NewEngine(repo, outboxSvc, orderMetrics, logg)
	require.NoError(t, err)
	client := dbpkg.FromConn(conn)
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Tx:      client,
		Engine:  engine,
		Pricing: pricingEngine,
		Numbers: numbers,
		Outbox:  outboxSvc,
		Metrics: orderMetrics,
		Logger:  logg,
	})
	require.NoError(t, err)

	return &fixture{
		db:      conn,
		client:  client,
		repo:    repo,
		outbox:  outboxSvc,
		engine:  engine,
		svc:     svc,
		reg:     reg,
		metrics: orderMetrics,
		logs:    buf,
	}
}

func validCreateInput(userID uuid.UUID) CreateInput {
	return CreateInput{
		Actor:            Actor{UserID: userID, Role: enums.UserRoleCustomer},
		Direction:        enums.DirectionJOToDZ,
		Contents:         "clothes and books",
		WeightDeclaredKg: decimal.RequireFromString("2.5"),
		SenderAddress: types.AddressSnapshot{
			FullName:     "Rami Haddad",
			Phone:        "+962790000000",
			Country:      "Jordan",
			City:         "Amman",
			AddressLine1: "Rainbow St 12",
		},
		ReceiverAddress: types.AddressSnapshot{
			FullName:     "Amel Benali",
			Phone:        "+213550000000",
			Country:      "Algeria",
			City:         "Algiers",
			AddressLine1: "Rue Didouche Mourad 4",
		},
	}
}

func (f *fixture) createOrder(t *testing.T, userID uuid.UUID) *models.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), validCreateInput(userID))
	require.NoError(t, err)
	return order
}

func (f *fixture) forceStatus(t *testing.T, orderID uuid.UUID, status enums.OrderStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error)
}

func (f *fixture) reload(t *testing.T, orderID uuid.UUID) *models.Order {
	t.Helper()
	order, err := NewRepository(f.db).FindByID(context.Background(), orderID)
	require.NoError(t, err)
	return order
}

func (f *fixture) countEvents(t *testing.T, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&count).Error)
	return count
}

func (f *fixture) transitionCount(t *testing.T, from, to string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "thouesa_order_status_transitions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["from"] == from && labels["to"] == to {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func admin() Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}
