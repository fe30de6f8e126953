package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/pkg/pricing"
	"taxiorders/storage"
)

const (
	maxAddressLength        = 512
	maxCommentLength        = 1024
	maxIdempotencyKeyLength = 128
)

// OrderService is the order lifecycle engine. All writes to an existing
// order go through Transition, which validates the move against the state
// machine and then applies it with a compare-and-swap on the store.
type OrderService interface {
	CreateOrder(ctx context.Context, actor models.Actor, req models.CreateOrderRequest) (*models.Order, error)
	Transition(ctx context.Context, actor models.Actor, orderID int64, action models.Action) (*models.Order, error)
	Accept(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	Decline(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	Start(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	Complete(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
	Cancel(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error)
}

type orderService struct {
	stg      storage.IOrderStorage
	users    UserService
	currency string
	retry    retrier
	log      logger.ILogger
}

func NewOrderService(stg storage.IStorage, users UserService, currency string, retry retrier, log logger.ILogger) OrderService {
	return &orderService{
		stg:      stg.Order(),
		users:    users,
		currency: currency,
		retry:    retry,
		log:      log,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, actor models.Actor, req models.CreateOrderRequest) (*models.Order, error) {
	if !actor.IsClient() {
		return nil, errs.NewForbiddenError(actor.ID, "only clients create orders")
	}
	if err := validateCreateRequest(&req); err != nil {
		return nil, err
	}
	if err := s.users.RequireClient(ctx, actor.ID); err != nil {
		return nil, err
	}

	fare, err := pricing.Fare(req.DistanceKm, req.VehicleClass)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ClientID:       actor.ID,
		FromAddress:    req.FromAddress,
		ToAddress:      req.ToAddress,
		VehicleClass:   req.VehicleClass,
		DistanceKm:     req.DistanceKm,
		Fare:           fare,
		Currency:       s.currency,
		Comment:        req.Comment,
		Status:         models.StatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	create := func() (*models.Order, error) {
		return s.stg.Create(ctx, order)
	}

	var created *models.Order
	if req.IdempotencyKey != nil {
		// A retried insert with the same key cannot produce a second row.
		created, err = retryWithData(ctx, s.retry, "create order", create)
	} else {
		created, err = create()
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		logger.Int64("order_id", created.ID),
		logger.Int64("client_id", created.ClientID),
		logger.String("vehicle_class", string(created.VehicleClass)),
		logger.Float64("distance_km", created.DistanceKm),
		logger.Float64("fare", created.Fare),
	)
	return created, nil
}

func (s *orderService) Transition(ctx context.Context, actor models.Actor, orderID int64, action models.Action) (*models.Order, error) {
	if _, err := models.ParseAction(string(action)); err != nil {
		return nil, err
	}

	order, err := retryWithData(ctx, s.retry, "get order", func() (*models.Order, error) {
		return s.stg.GetByID(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}

	r, ok := lookupRule(order.Status, action)
	if !ok {
		if action == models.ActionAccept && !order.Status.IsTerminal() {
			// Someone else already holds it.
			return nil, errs.NewConflictError(orderID)
		}
		return nil, errs.NewInvalidTransitionError(orderID, string(order.Status), string(action))
	}
	if !r.allowed(order, actor) {
		return nil, errs.NewForbiddenError(actor.ID, r.denied)
	}

	params := models.TransitionParams{
		OrderID:          orderID,
		ExpectedStatus:   order.Status,
		NewStatus:        r.to,
		ExpectedDriverID: order.DriverID,
		Action:           action,
		Actor:            actor,
	}
	if r.bind {
		driverID := actor.ID
		params.BindDriverID = &driverID
	}

	updated, err := s.stg.ApplyTransition(ctx, params)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			s.log.Info("transition lost race",
				logger.Int64("order_id", orderID),
				logger.String("action", string(action)),
				logger.Int64("actor_id", actor.ID),
			)
		}
		return nil, err
	}

	s.log.Info("order transitioned",
		logger.Int64("order_id", orderID),
		logger.String("action", string(action)),
		logger.String("from", string(order.Status)),
		logger.String("to", string(updated.Status)),
		logger.Int64("actor_id", actor.ID),
	)
	return updated, nil
}

func (s *orderService) Accept(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, actor, orderID, models.ActionAccept)
}

func (s *orderService) Decline(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, actor, orderID, models.ActionDecline)
}

func (s *orderService) Start(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, actor, orderID, models.ActionStart)
}

func (s *orderService) Complete(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, actor, orderID, models.ActionComplete)
}

func (s *orderService) Cancel(ctx context.Context, actor models.Actor, orderID int64) (*models.Order, error) {
	return s.Transition(ctx, actor, orderID, models.ActionCancel)
}

func validateCreateRequest(req *models.CreateOrderRequest) error {
	req.FromAddress = strings.TrimSpace(req.FromAddress)
	req.ToAddress = strings.TrimSpace(req.ToAddress)

	var problems []error
	if req.FromAddress == "" || len(req.FromAddress) > maxAddressLength {
		problems = append(problems, errs.NewValidationError("from_address"))
	}
	if req.ToAddress == "" || len(req.ToAddress) > maxAddressLength {
		problems = append(problems, errs.NewValidationError("to_address"))
	}
	if !req.VehicleClass.IsValid() {
		problems = append(problems, errs.NewValidationErrorWithCause("vehicle_class", fmt.Errorf("%q is not a known vehicle class", req.VehicleClass)))
	}
	if !models.ValidDistanceKm(req.DistanceKm) {
		problems = append(problems, errs.NewValidationErrorWithCause("distance_km", fmt.Errorf("%v is outside [0, %d] km", req.DistanceKm, models.MaxDistanceKm)))
	}
	if req.Comment != nil && len(*req.Comment) > maxCommentLength {
		problems = append(problems, errs.NewValidationError("comment"))
	}
	if req.IdempotencyKey != nil && (*req.IdempotencyKey == "" || len(*req.IdempotencyKey) > maxIdempotencyKeyLength) {
		problems = append(problems, errs.NewValidationError("idempotency_key"))
	}

	switch len(problems) {
	case 0:
		return nil
	case 1:
		return problems[0]
	}
	return errs.NewValidationErrorWithCause("order", errors.Join(problems...))
}
