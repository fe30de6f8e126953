package memory

import (
	"context"
	"fmt"
	"sort"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
)

type orderRepo struct {
	s *Store
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageError("create order", err)
	}
	if !models.ValidDistanceKm(order.DistanceKm) {
		return nil, errs.NewValidationErrorWithCause("distance_km", fmt.Errorf("%v is outside [0, %d] km", order.DistanceKm, models.MaxDistanceKm))
	}
	if !order.VehicleClass.IsValid() {
		return nil, errs.NewValidationErrorWithCause("vehicle_class", fmt.Errorf("%q is not a known vehicle class", order.VehicleClass))
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	client, ok := r.s.users[order.ClientID]
	if !ok {
		return nil, errs.NewValidationErrorWithCause("client_id", fmt.Errorf("client %d does not exist", order.ClientID))
	}
	if client.Role != models.RoleClient {
		return nil, errs.NewValidationErrorWithCause("client_id", fmt.Errorf("user %d is a %s, not a client", order.ClientID, client.Role))
	}

	if order.IdempotencyKey != nil {
		if id, ok := r.s.orderKeys[idempotencyKey{order.ClientID, *order.IdempotencyKey}]; ok {
			return r.s.withNames(r.s.orders[id]), nil
		}
	}

	r.s.nextOrderID++
	stored := copyOrder(order)
	stored.ID = r.s.nextOrderID
	stored.Status = models.StatusPending
	stored.DriverID = nil
	stored.CreatedAt = r.s.now()
	stored.UpdatedAt = stored.CreatedAt
	stored.ClientName, stored.DriverName = "", ""
	r.s.orders[stored.ID] = stored

	if stored.IdempotencyKey != nil {
		r.s.orderKeys[idempotencyKey{stored.ClientID, *stored.IdempotencyKey}] = stored.ID
	}

	r.s.log.Debug("order stored", logger.Int64("order_id", stored.ID))
	return r.s.withNames(stored), nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageError("get order", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, errs.NewNotFoundError("order", id)
	}
	return r.s.withNames(o), nil
}

func (r *orderRepo) GetClientOrders(ctx context.Context, clientID int64) ([]*models.Order, error) {
	return r.list(ctx, "get client orders", func(o *models.Order) bool {
		return o.ClientID == clientID
	})
}

func (r *orderRepo) GetByStatus(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	return r.list(ctx, "get orders by status", func(o *models.Order) bool {
		if filter.Status != nil && o.Status != *filter.Status {
			return false
		}
		if filter.DriverID != nil && !o.IsBoundTo(*filter.DriverID) {
			return false
		}
		return true
	})
}

func (r *orderRepo) ApplyTransition(ctx context.Context, p models.TransitionParams) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageError("apply transition", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[p.OrderID]
	if !ok {
		return nil, errs.NewNotFoundError("order", p.OrderID)
	}
	if o.Status != p.ExpectedStatus {
		return nil, errs.NewConflictError(p.OrderID)
	}
	if p.BindDriverID != nil && o.DriverID != nil {
		return nil, errs.NewConflictError(p.OrderID)
	}
	if p.ExpectedDriverID != nil && !o.IsBoundTo(*p.ExpectedDriverID) {
		return nil, errs.NewConflictError(p.OrderID)
	}

	now := r.s.now()
	o.Status = p.NewStatus
	if p.BindDriverID != nil {
		d := *p.BindDriverID
		o.DriverID = &d
	}
	o.UpdatedAt = now

	r.s.nextTransitionID++
	r.s.transitions[p.OrderID] = append(r.s.transitions[p.OrderID], &models.OrderTransition{
		ID:         r.s.nextTransitionID,
		OrderID:    p.OrderID,
		FromStatus: p.ExpectedStatus,
		ToStatus:   p.NewStatus,
		Action:     p.Action,
		ActorID:    p.Actor.ID,
		ActorRole:  p.Actor.Role,
		CreatedAt:  now,
	})

	return r.s.withNames(o), nil
}

func (r *orderRepo) GetTransitions(ctx context.Context, orderID int64) ([]*models.OrderTransition, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageError("get transitions", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	src := r.s.transitions[orderID]
	out := make([]*models.OrderTransition, 0, len(src))
	for _, t := range src {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *orderRepo) list(ctx context.Context, op string, keep func(*models.Order) bool) ([]*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.NewStorageError(op, err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.Order
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, r.s.withNames(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// withNames returns a copy with display names joined in. Caller holds mu.
func (s *Store) withNames(o *models.Order) *models.Order {
	c := copyOrder(o)
	if u, ok := s.users[o.ClientID]; ok {
		c.ClientName = u.FullName
	}
	if o.DriverID != nil {
		if u, ok := s.users[*o.DriverID]; ok {
			c.DriverName = u.FullName
		}
	}
	return c
}
