package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"taxiorders/config"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/storage/memory"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     IServiceManager
	store   *memory.Store
	client  models.Actor
	other   models.Actor
	driver1 models.Actor
	driver2 models.Actor
	admin   models.Actor
}

func testConfig() config.Config {
	return config.Config{
		Currency:             "RUB",
		RetryMaxAttempts:     3,
		RetryInitialInterval: time.Millisecond,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var tick int64
	store := memory.New(logger.NewNop()).WithClock(func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&tick, 1)) * time.Second)
	})

	f := &fixture{
		svc:   New(store, testConfig(), logger.NewNop()),
		store: store,
	}
	f.client = f.user(t, "Client One", models.RoleClient)
	f.other = f.user(t, "Client Two", models.RoleClient)
	f.driver1 = f.user(t, "Driver One", models.RoleDriver)
	f.driver2 = f.user(t, "Driver Two", models.RoleDriver)
	f.admin = f.user(t, "Admin", models.RoleAdmin)
	return f
}

func (f *fixture) user(t *testing.T, name string, role models.Role) models.Actor {
	t.Helper()
	u, err := f.store.User().Create(context.Background(), &models.User{FullName: name, Role: role})
	require.NoError(t, err)
	return models.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) createOrder(t *testing.T) *models.Order {
	t.Helper()
	o, err := f.svc.Order().CreateOrder(context.Background(), f.client, models.CreateOrderRequest{
		FromAddress:  "A",
		ToAddress:    "B",
		VehicleClass: models.ClassComfort,
		DistanceKm:   2.1,
	})
	require.NoError(t, err)
	return o
}

func strPtr(s string) *string { return &s }
