package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/db/dbtest"
	pkgerrors "github.com/thouesa/thouesa-backend/pkg/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestService(t *testing.T) Service {
	t.Helper()
	defaults, err := DefaultsFromConfig(config.PricingConfig{
		DefaultJODPerKgJOToDZ: "4.5",
		DefaultDZDPerKgDZToJO: "1100",
		DefaultCommissionPct:  "2",
	})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(dbtest.Open(t)), defaults)
	require.NoError(t, err)
	return svc
}

func TestGetSeedsDefaultsOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, first.ShipJODPerKgJOToDZ.Equal(dec("4.5")))
	assert.True(t, first.ShipDZDPerKgDZToJO.Equal(dec("1100")))
	assert.True(t, first.CommissionPercent.Equal(dec("2")))

	_, err = svc.Update(ctx, UpdateInput{CommissionPercent: decPtr("3.5")})
	require.NoError(t, err)

	again, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, again.CommissionPercent.Equal(dec("3.5")))
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	active := true
	name := " Ramadan "
	fb := "https://facebook.com/thouesa"

	updated, err := svc.Update(ctx, UpdateInput{
		PromoActive:          &active,
		PromoName:            &name,
		PromoDiscountPercent: decPtr("10"),
		FacebookURL:          &fb,
	})
	require.NoError(t, err)
	assert.True(t, updated.PromoActive)
	require.NotNil(t, updated.PromoName)
	assert.Equal(t, "Ramadan", *updated.PromoName)
	assert.True(t, updated.ShipJODPerKgJOToDZ.Equal(dec("4.5")))

	empty := ""
	updated, err = svc.Update(ctx, UpdateInput{FacebookURL: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.FacebookURL)
}

func TestUpdateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, UpdateInput{ShipJODPerKgJOToDZ: decPtr("-1")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Update(ctx, UpdateInput{CommissionPercent: decPtr("150")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	active := true
	_, err = svc.Update(ctx, UpdateInput{PromoActive: &active})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPublicHidesInactivePromoAndAppliesMarkup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	inactive := false
	name := "Summer"

	_, err := svc.Update(ctx, UpdateInput{
		PromoActive:          &inactive,
		PromoName:            &name,
		PromoDiscountPercent: decPtr("5"),
		USDTDZDPrice:         decPtr("250"),
		USDTMarkupPercent:    decPtr("3"),
	})
	require.NoError(t, err)

	view, err := svc.Public(ctx)
	require.NoError(t, err)
	assert.False(t, view.PromoActive)
	assert.Nil(t, view.PromoName)
	assert.Nil(t, view.PromoDiscountPercent)
	require.NotNil(t, view.USDTSellPriceDZD)
	assert.Equal(t, "257.5", view.USDTSellPriceDZD.String())
}

func TestDefaultsFromConfigRejectsGarbage(t *testing.T) {
	_, err := DefaultsFromConfig(config.PricingConfig{DefaultJODPerKgJOToDZ: "x", DefaultDZDPerKgDZToJO: "1", DefaultCommissionPct: "0"})
	require.Error(t, err)
}
