package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thouesa/thouesa-backend/internal/pricing"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
	"github.com/thouesa/thouesa-backend/pkg/pagination"
	"github.com/thouesa/thouesa-backend/pkg/types"
)

type stubQuoter struct {
	quote pricing.Quote
	err   error
}

func (s stubQuoter) Estimate(context.Context, enums.Direction, decimal.Decimal) (pricing.Quote, error) {
	return s.quote, s.err
}

type stubNumbers struct {
	calls int
}

func (s *stubNumbers) Next(context.Context, enums.Direction) (string, error) {
	s.calls++
	return "TH-20260115-JO-0001", nil
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	_, err = NewEngine(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestCreatePersistsOrderLogAndEvent(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	order, err := f.svc.Create(context.Background(), validCreateInput(userID))
	require.NoError(t, err)

	today := time.Now().UTC().Format("20060102")
	assert.Equal(t, "TH-"+today+"-JO-0001", order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPendingReview, order.Status)
	assert.Equal(t, enums.CurrencyJOD, order.Currency)
	assert.Equal(t, "11.25", order.PriceBase.StringFixed(2))
	assert.Equal(t, "0.23", order.PriceCommission.StringFixed(2))
	assert.Equal(t, "11.48", order.PriceEstimated.StringFixed(2))
	assert.Nil(t, order.PriceFinal)
	assert.False(t, order.AssistedPurchase)

	stored := f.reload(t, order.ID)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, "Amman", stored.SenderAddress.City)
	assert.True(t, stored.WeightDeclaredKg.Equal(decimal.RequireFromString("2.5")))

	logs, err := f.repo.ListLogs(context.Background(), order.ID, false)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].FromStatus)
	assert.Equal(t, enums.OrderStatusPendingReview, logs[0].ToStatus)
	assert.Equal(t, "order created", logs[0].Note)

	assert.EqualValues(t, 1, f.countEvents(t, enums.EventOrderCreated))
	assert.Equal(t, 1.0, f.transitionCount(t, "NONE", "PENDING_REVIEW"))
	assert.Contains(t, f.logs.String(), "order created")

	second := f.createOrder(t, userID)
	assert.Equal(t, "TH-"+today+"-JO-0002", second.OrderNumber)
}

func TestCreateMarksAssistedPurchase(t *testing.T) {
	f := newFixture(t)
	input := validCreateInput(uuid.New())
	url := "https://shop.example/item/1"
	input.PurchaseDetails = &types.PurchaseDetails{PurchasePlatform: "Amazon", ProductURL: &url}

	order, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, order.AssistedPurchase)

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.PurchaseDetails)
	assert.Equal(t, "Amazon", stored.PurchaseDetails.PurchasePlatform)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	negative := decimal.RequireFromString("-1")

	cases := map[string]struct {
		mutate func(*CreateInput)
		code   pkgerrors.Code
	}{
		"missing user":      {func(in *CreateInput) { in.Actor.UserID = uuid.Nil }, pkgerrors.CodeUnauthorized},
		"bad direction":     {func(in *CreateInput) { in.Direction = "JO_TO_FR" }, pkgerrors.CodeValidation},
		"blank contents":    {func(in *CreateInput) { in.Contents = "   " }, pkgerrors.CodeValidation},
		"zero weight":       {func(in *CreateInput) { in.WeightDeclaredKg = decimal.Zero }, pkgerrors.CodeValidation},
		"sender city":       {func(in *CreateInput) { in.SenderAddress.City = "" }, pkgerrors.CodeValidation},
		"receiver phone":    {func(in *CreateInput) { in.ReceiverAddress.Phone = " " }, pkgerrors.CodeValidation},
		"negative declared": {func(in *CreateInput) { in.DeclaredValueUSD = &negative }, pkgerrors.CodeValidation},
		"insurance value":   {func(in *CreateInput) { in.InsuranceRequested = true }, pkgerrors.CodeValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			input := validCreateInput(userID)
			tc.mutate(&input)
			_, err := f.svc.Create(context.Background(), input)
			requireCode(t, err, tc.code)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreatePricingFailureDrawsNoNumber(t *testing.T) {
	f := newFixture(t)
	numbers := &stubNumbers{}
	svc, err := NewService(ServiceParams{
		Repo:    f.repo,
		Tx:      f.client,
		Engine:  f.engine,
		Pricing: stubQuoter{err: pkgerrors.New(pkgerrors.CodeNoPricingRule, "no pricing configured")},
		Numbers: numbers,
		Outbox:  f.outbox,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreateInput(uuid.New()))
	requireCode(t, err, pkgerrors.CodeNoPricingRule)
	assert.Equal(t, 0, numbers.calls)
	assert.EqualValues(t, 0, f.countEvents(t, enums.EventOrderCreated))
}

func TestTransitionShippedToConfirmedFails(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, uuid.New())
	f.forceStatus(t, order.ID, enums.OrderStatusShipped)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusConfirmed,
		Actor:   admin(),
	})
	requireCode(t, err, pkgerrors.CodeInvalidTransition)
	assert.Equal(t, enums.OrderStatusShipped, f.reload(t, order.ID).Status)

	logs, err := f.repo.ListLogs(context.Background(), order.ID, false)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestTransitionConfirmFillsFinals(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, uuid.New())

	confirmed, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusConfirmed,
		Actor:   admin(),
		Note:    "  paid in cash  ",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, confirmed.Status)

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.WeightFinalKg)
	require.NotNil(t, stored.PriceFinal)
	assert.True(t, stored.WeightFinalKg.Equal(stored.WeightDeclaredKg))
	assert.True(t, stored.PriceFinal.Equal(stored.PriceEstimated))

	logs, err := f.svc.Logs(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "paid in cash", logs[0].Note)
	assert.Equal(t, 1.0, f.transitionCount(t, "PENDING_REVIEW", "CONFIRMED"))
}

func TestTransitionRejectsPaymentReviewTarget(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, uuid.New())

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusPaymentUnderReview,
		Actor:   admin(),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestTransitionUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderID: uuid.New(),
		Target:  enums.OrderStatusConfirmed,
		Actor:   admin(),
	})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Transition(context.Background(), TransitionInput{
		OrderID: uuid.New(),
		Target:  "LOST",
		Actor:   admin(),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestShipRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, uuid.New())
	ctx := context.Background()

	_, err := f.svc.Ship(ctx, order.ID, admin(), "")
	requireCode(t, err, pkgerrors.CodeInvalidTransition)

	_, err = f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: enums.OrderStatusConfirmed, Actor: admin()})
	require.NoError(t, err)
	shipped, err := f.svc.Ship(ctx, order.ID, admin(), "handed to carrier")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, shipped.Status)
}

func TestStatusLogWalksTheMatrix(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, uuid.New())
	ctx := context.Background()

	steps := []enums.OrderStatus{
		enums.OrderStatusRejected,
		enums.OrderStatusConfirmed, // refused: REJECTED -> CONFIRMED
		enums.OrderStatusPendingReview,
		enums.OrderStatusConfirmed,
		enums.OrderStatusDelivered, // refused: CONFIRMED -> DELIVERED
		enums.OrderStatusShipped,
		enums.OrderStatusArrived,
		enums.OrderStatusReturned,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusShipped, // refused: DELIVERED is terminal
	}
	for _, target := range steps {
		_, _ = f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: target, Actor: admin()})
	}

	logs, err := f.repo.ListLogs(ctx, order.ID, false)
	require.NoError(t, err)
	require.Len(t, logs, 9)

	require.Nil(t, logs[0].FromStatus)
	current := logs[0].ToStatus
	assert.Equal(t, enums.OrderStatusPendingReview, current)
	for _, entry := range logs[1:] {
		require.NotNil(t, entry.FromStatus)
		assert.Equal(t, current, *entry.FromStatus)
		assert.Truef(t, CanTransition(current, entry.ToStatus), "%s -> %s", current, entry.ToStatus)
		current = entry.ToStatus
	}
	assert.Equal(t, enums.OrderStatusDelivered, current)
	assert.Equal(t, current, f.reload(t, order.ID).Status)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	order := f.createOrder(t, owner)
	ctx := context.Background()

	got, err := f.svc.Get(ctx, order.ID, Actor{UserID: owner, Role: enums.UserRoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)

	_, err = f.svc.Get(ctx, order.ID, admin())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, order.ID, Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Get(ctx, uuid.New(), admin())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListScopesCustomersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()
	first := f.createOrder(t, alice)
	f.createOrder(t, alice)
	newest := f.createOrder(t, alice)
	f.createOrder(t, bob)

	page, err := f.svc.List(ctx, ListInput{
		Viewer: Actor{UserID: alice, Role: enums.UserRoleCustomer},
		Params: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, newest.ID, page.Orders[0].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := f.svc.List(ctx, ListInput{
		Viewer: Actor{UserID: alice, Role: enums.UserRoleCustomer},
		Params: pagination.Params{Limit: 2, Cursor: page.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, next.Orders, 1)
	assert.Equal(t, first.ID, next.Orders[0].ID)
	assert.Empty(t, next.NextCursor)

	all, err := f.svc.List(ctx, ListInput{Viewer: admin()})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 4)

	_, err = f.svc.Transition(ctx, TransitionInput{OrderID: first.ID, Target: enums.OrderStatusConfirmed, Actor: admin()})
	require.NoError(t, err)
	confirmed := enums.OrderStatusConfirmed
	filtered, err := f.svc.List(ctx, ListInput{Viewer: admin(), Status: &confirmed})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 1)
	assert.Equal(t, first.ID, filtered.Orders[0].ID)

	_, err = f.svc.List(ctx, ListInput{Viewer: admin(), Params: pagination.Params{Cursor: "%%%"}})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestTrackReturnsPublicHistory(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, uuid.New())
	ctx := context.Background()
	_, err := f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: enums.OrderStatusConfirmed, Actor: admin()})
	require.NoError(t, err)

	view, err := f.svc.Track(ctx, "  "+order.OrderNumber+" ")
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, view.OrderNumber)
	assert.Equal(t, enums.OrderStatusConfirmed, view.Status)
	require.Len(t, view.History, 2)
	assert.Equal(t, enums.OrderStatusPendingReview, view.History[0].Status)
	assert.Equal(t, enums.OrderStatusConfirmed, view.History[1].Status)

	_, err = f.svc.Track(ctx, "TH-19990101-JO-0001")
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = f.svc.Track(ctx, " ")
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestLogsNewestFirst(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, uuid.New())
	ctx := context.Background()
	_, err := f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: enums.OrderStatusRejected, Actor: admin()})
	require.NoError(t, err)

	logs, err := f.svc.Logs(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, enums.OrderStatusRejected, logs[0].ToStatus)
	assert.Equal(t, enums.OrderStatusPendingReview, logs[1].ToStatus)

	_, err = f.svc.Logs(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRepositoryListInStatusBefore(t *testing.T) {
	f := newFixture(t)
	stale := f.createOrder(t, uuid.New())
	fresh := f.createOrder(t, uuid.New())
	f.forceStatus(t, stale.ID, enums.OrderStatusPaymentUnderReview)
	f.forceStatus(t, fresh.ID, enums.OrderStatusPaymentUnderReview)
	old := time.Now().UTC().Add(-72 * time.Hour)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", stale.ID).UpdateColumn("updated_at", old).Error)

	rows, err := f.repo.ListInStatusBefore(context.Background(), enums.OrderStatusPaymentUnderReview, time.Now().UTC().Add(-48*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
}
