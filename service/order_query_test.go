package service

import (
	"context"
	"testing"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderQuery_ForDriver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.createOrder(t)
	second := f.createOrder(t)
	third := f.createOrder(t)
	for _, o := range []*models.Order{first, second} {
		_, err := f.svc.Order().Accept(ctx, f.driver1, o.ID)
		require.NoError(t, err)
	}
	_, err := f.svc.Order().Complete(ctx, f.driver1, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Order().Accept(ctx, f.driver2, third.ID)
	require.NoError(t, err)

	all, err := f.svc.Query().ForDriver(ctx, f.driver1.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)

	completed := models.StatusCompleted
	done, err := f.svc.Query().ForDriver(ctx, f.driver1.ID, &completed)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, first.ID, done[0].ID)
	assert.Equal(t, "Driver One", done[0].DriverName)
	assert.Equal(t, "Client One", done[0].ClientName)

	bogus := models.OrderStatus("declined")
	_, err = f.svc.Query().ForDriver(ctx, f.driver1.ID, &bogus)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestOrderQuery_EmptyListsAreNotNil(t *testing.T) {
	f := newFixture(t)

	available, err := f.svc.Query().AvailableForDrivers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, available)
	assert.Empty(t, available)
}

func TestOrderQuery_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.createOrder(t)

	_, err := f.svc.Query().Get(ctx, f.driver2, o.ID)
	assert.NoError(t, err, "pending orders are visible to any driver")

	_, err = f.svc.Order().Accept(ctx, f.driver1, o.ID)
	require.NoError(t, err)

	for name, actor := range map[string]models.Actor{
		"owning client": f.client,
		"bound driver":  f.driver1,
		"admin":         f.admin,
	} {
		_, err := f.svc.Query().Get(ctx, actor, o.ID)
		assert.NoError(t, err, name)
	}
	for name, actor := range map[string]models.Actor{
		"other client": f.other,
		"other driver": f.driver2,
	} {
		_, err := f.svc.Query().Get(ctx, actor, o.ID)
		assert.ErrorIs(t, err, errs.ErrForbidden, name)

		_, err = f.svc.Query().History(ctx, actor, o.ID)
		assert.ErrorIs(t, err, errs.ErrForbidden, name)
	}
}
