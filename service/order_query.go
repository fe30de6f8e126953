package service

import (
	"context"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/storage"
)

// OrderQuery serves read-only views straight from the store, so a committed
// transition is visible to the next read.
type OrderQuery interface {
	AvailableForDrivers(ctx context.Context) ([]*models.Order, error)
	ForClient(ctx context.Context, clientID int64) ([]*models.Order, error)
	ForDriver(ctx context.Context, driverID int64, status *models.OrderStatus) ([]*models.Order, error)
	Get(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	History(ctx context.Context, actor models.Actor, orderID int64) ([]*models.OrderTransition, error)
}

type orderQuery struct {
	stg   storage.IOrderStorage
	retry retrier
	log   logger.ILogger
}

func NewOrderQuery(stg storage.IStorage, retry retrier, log logger.ILogger) OrderQuery {
	return &orderQuery{
		stg:   stg.Order(),
		retry: retry,
		log:   log,
	}
}

func (q *orderQuery) AvailableForDrivers(ctx context.Context) ([]*models.Order, error) {
	pending := models.StatusPending
	return q.list(ctx, "available orders", func() ([]*models.Order, error) {
		return q.stg.GetByStatus(ctx, models.OrderFilter{Status: &pending})
	})
}

func (q *orderQuery) ForClient(ctx context.Context, clientID int64) ([]*models.Order, error) {
	return q.list(ctx, "client orders", func() ([]*models.Order, error) {
		return q.stg.GetClientOrders(ctx, clientID)
	})
}

func (q *orderQuery) ForDriver(ctx context.Context, driverID int64, status *models.OrderStatus) ([]*models.Order, error) {
	if status != nil && !status.IsValid() {
		return nil, errs.NewValidationError("status")
	}
	return q.list(ctx, "driver orders", func() ([]*models.Order, error) {
		return q.stg.GetByStatus(ctx, models.OrderFilter{Status: status, DriverID: &driverID})
	})
}

func (q *orderQuery) Get(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	order, err := retryWithData(ctx, q.retry, "get order", func() (*models.Order, error) {
		return q.stg.GetByID(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	if !canView(order, actor) {
		return nil, errs.NewForbiddenError(actor.ID, "order belongs to someone else")
	}
	return order, nil
}

func (q *orderQuery) History(ctx context.Context, actor models.Actor, orderID int64) ([]*models.OrderTransition, error) {
	if _, err := q.Get(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return retryWithData(ctx, q.retry, "order history", func() ([]*models.OrderTransition, error) {
		return q.stg.GetTransitions(ctx, orderID)
	})
}

func (q *orderQuery) list(ctx context.Context, op string, fn func() ([]*models.Order, error)) ([]*models.Order, error) {
	orders, err := retryWithData(ctx, q.retry, op, fn)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	q.log.Debug("orders listed", logger.String("op", op), logger.Int("count", len(orders)))
	return orders, nil
}

// canView: the owning client, the bound driver, any driver while the order
// is still up for grabs, and admins.
func canView(o *models.Order, a models.Actor) bool {
	switch {
	case a.IsAdmin():
		return true
	case a.IsClient():
		return o.ClientID == a.ID
	case a.IsDriver():
		return o.Status == models.StatusPending || o.IsBoundTo(a.ID)
	}
	return false
}
