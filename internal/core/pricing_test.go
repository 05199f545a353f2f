package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gstbilling/internal/core"
)

func TestResolvePrice_CatalogFallback(t *testing.T) {
	env, ctx := newTestEnv(t)

	price, hasOverride, err := env.pricing.ResolvePrice(ctx, env.localCustomer.ID, env.widget.ID)
	require.NoError(t, err)
	require.False(t, hasOverride)
	require.True(t, price.Equal(dec(t, "100.00")), "got %s", price)
}

func TestResolvePrice_OverrideWins(t *testing.T) {
	env, ctx := newTestEnv(t)

	require.NoError(t, env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "85.00")))

	price, hasOverride, err := env.pricing.ResolvePrice(ctx, env.localCustomer.ID, env.widget.ID)
	require.NoError(t, err)
	require.True(t, hasOverride)
	require.True(t, price.Equal(dec(t, "85.00")), "got %s", price)

	// Other customers still see the catalog price.
	price, hasOverride, err = env.pricing.ResolvePrice(ctx, env.remoteCustomer.ID, env.widget.ID)
	require.NoError(t, err)
	require.False(t, hasOverride)
	require.True(t, price.Equal(dec(t, "100.00")), "got %s", price)
}

func TestSetOverride_Validation(t *testing.T) {
	env, ctx := newTestEnv(t)

	err := env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "0"))
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	err = env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "-5.00"))
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	err = env.pricing.SetOverride(ctx, env.localCustomer.ID, 9999, dec(t, "10.00"))
	require.ErrorIs(t, err, core.ErrNotFound)

	err = env.pricing.SetOverride(ctx, 9999, env.widget.ID, dec(t, "10.00"))
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestSetOverride_SamePriceIsNoop(t *testing.T) {
	env, ctx := newTestEnv(t)

	require.NoError(t, env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "85.00")))
	first, err := env.store.GetOverride(ctx, env.localCustomer.ID, env.widget.ID)
	require.NoError(t, err)

	require.NoError(t, env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "85.00")))
	second, err := env.store.GetOverride(ctx, env.localCustomer.ID, env.widget.ID)
	require.NoError(t, err)
	require.Equal(t, first.UpdatedAt, second.UpdatedAt, "no-op write must not touch the row")
}

func TestDeleteOverride_RevertsToCatalog(t *testing.T) {
	env, ctx := newTestEnv(t)

	require.NoError(t, env.pricing.SetOverride(ctx, env.localCustomer.ID, env.widget.ID, dec(t, "85.00")))
	require.NoError(t, env.pricing.DeleteOverride(ctx, env.localCustomer.ID, env.widget.ID))

	price, hasOverride, err := env.pricing.ResolvePrice(ctx, env.localCustomer.ID, env.widget.ID)
	require.NoError(t, err)
	require.False(t, hasOverride)
	require.True(t, price.Equal(dec(t, "100.00")), "got %s", price)

	// Deleting again is not an error.
	require.NoError(t, env.pricing.DeleteOverride(ctx, env.localCustomer.ID, env.widget.ID))
}
