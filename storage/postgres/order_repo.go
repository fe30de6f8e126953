package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/storage"
)

const orderColumns = `
	o.id, o.client_id, o.driver_id, o.from_address, o.to_address, o.vehicle_class,
	o.distance_km, o.fare, o.currency, o.comment, o.status, o.idempotency_key,
	o.created_at, o.updated_at,
	COALESCE(c.full_name, '') AS client_name,
	COALESCE(d.full_name, '') AS driver_name`

const orderFrom = `
	FROM orders o
	LEFT JOIN users c ON o.client_id = c.id
	LEFT JOIN users d ON o.driver_id = d.id`

const orderNewestFirst = ` ORDER BY o.created_at DESC, o.id DESC`

type orderRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewOrderRepo(db *pgxpool.Pool, log logger.ILogger) storage.IOrderStorage {
	return &orderRepo{db: db, log: log}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := validateNewOrder(order); err != nil {
		return nil, err
	}
	if err := r.requireClient(ctx, order.ClientID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO orders (client_id, from_address, to_address, vehicle_class, distance_km, fare, currency, comment, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
		ON CONFLICT (client_id, idempotency_key) DO NOTHING
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query,
		order.ClientID,
		order.FromAddress,
		order.ToAddress,
		string(order.VehicleClass),
		order.DistanceKm,
		order.Fare,
		order.Currency,
		order.Comment,
		order.IdempotencyKey,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		// Same key already used by this client: hand back the original order.
		err = r.db.QueryRow(ctx,
			`SELECT id FROM orders WHERE client_id = $1 AND idempotency_key = $2`,
			order.ClientID, order.IdempotencyKey,
		).Scan(&id)
	}
	if err != nil {
		switch code, constraint := pgErrorCode(err); code {
		case codeForeignKeyViolation:
			return nil, errs.NewValidationErrorWithCause("client_id", fmt.Errorf("client %d does not exist", order.ClientID))
		case codeCheckViolation:
			return nil, errs.NewValidationErrorWithCause(constraint, err)
		case codeNumericOutOfRange:
			return nil, errs.NewValidationErrorWithCause("order", err)
		}
		r.log.Error("failed to create order", logger.Int64("client_id", order.ClientID), logger.Error(err))
		return nil, r.wrap("create order", err)
	}

	return getOrderByID(ctx, r.db, id, r.wrap)
}

// requireClient rejects orders for missing users and for users that are not
// clients. The foreign key still catches a client deleted in between.
func (r *orderRepo) requireClient(ctx context.Context, clientID int64) error {
	var role string
	err := r.db.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, clientID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewValidationErrorWithCause("client_id", fmt.Errorf("client %d does not exist", clientID))
	}
	if err != nil {
		r.log.Error("failed to check order client", logger.Int64("client_id", clientID), logger.Error(err))
		return r.wrap("check client", err)
	}
	if models.Role(role) != models.RoleClient {
		return errs.NewValidationErrorWithCause("client_id", fmt.Errorf("user %d is a %s, not a client", clientID, role))
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	order, err := getOrderByID(ctx, r.db, id, r.wrap)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		r.log.Error("failed to get order by id", logger.Int64("id", id), logger.Error(err))
	}
	return order, err
}

func (r *orderRepo) GetClientOrders(ctx context.Context, clientID int64) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.client_id = $1` + orderNewestFirst
	return r.scanOrders(ctx, "get client orders", query, clientID)
}

func (r *orderRepo) GetByStatus(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.DriverID != nil {
		args = append(args, *filter.DriverID)
		conds = append(conds, fmt.Sprintf("o.driver_id = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + orderFrom
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += orderNewestFirst

	return r.scanOrders(ctx, "get orders by status", query, args...)
}

// ApplyTransition is a compare-and-swap: the UPDATE matches only while the
// row is still in the expected state, so of two racing writers exactly one
// sees a returned row.
func (r *orderRepo) ApplyTransition(ctx context.Context, p models.TransitionParams) (*models.Order, error) {
	var order *models.Order

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE orders
			SET status = $3, driver_id = COALESCE($4, driver_id), updated_at = NOW()
			WHERE id = $1
			  AND status = $2
			  AND ($4::BIGINT IS NULL OR driver_id IS NULL)
			  AND ($5::BIGINT IS NULL OR driver_id = $5)
			RETURNING id
		`
		var id int64
		err := tx.QueryRow(ctx, query,
			p.OrderID,
			string(p.ExpectedStatus),
			string(p.NewStatus),
			p.BindDriverID,
			p.ExpectedDriverID,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, p.OrderID).Scan(&exists); err != nil {
				return r.wrap("check order", err)
			}
			if !exists {
				return errs.NewNotFoundError("order", p.OrderID)
			}
			return errs.NewConflictError(p.OrderID)
		}
		if err != nil {
			return r.wrap("apply transition", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO order_transitions (order_id, from_status, to_status, action, actor_id, actor_role)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.OrderID, string(p.ExpectedStatus), string(p.NewStatus), string(p.Action), p.Actor.ID, string(p.Actor.Role))
		if err != nil {
			return r.wrap("record transition", err)
		}

		order, err = getOrderByID(ctx, tx, p.OrderID, r.wrap)
		return err
	})
	if err != nil {
		if !errors.Is(err, errs.ErrConflict) && !errors.Is(err, errs.ErrNotFound) {
			r.log.Error("failed to apply transition", logger.Int64("order_id", p.OrderID), logger.Error(err))
		}
		if errs.IsRetryable(err) || errors.Is(err, errs.ErrConflict) || errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		// Begin or commit failed.
		return nil, r.wrap("apply transition", err)
	}

	return order, nil
}

func (r *orderRepo) GetTransitions(ctx context.Context, orderID int64) ([]*models.OrderTransition, error) {
	query := `
		SELECT id, order_id, from_status, to_status, action, actor_id, actor_role, created_at
		FROM order_transitions
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, r.wrap("get transitions", err)
	}
	defer rows.Close()

	var transitions []*models.OrderTransition
	for rows.Next() {
		var (
			t                      models.OrderTransition
			from, to, action, role string
		)
		if err := rows.Scan(&t.ID, &t.OrderID, &from, &to, &action, &t.ActorID, &role, &t.CreatedAt); err != nil {
			return nil, r.wrap("scan transition", err)
		}
		t.FromStatus = models.OrderStatus(from)
		t.ToStatus = models.OrderStatus(to)
		t.Action = models.Action(action)
		t.ActorRole = models.Role(role)
		transitions = append(transitions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("get transitions", err)
	}
	return transitions, nil
}

func (r *orderRepo) scanOrders(ctx context.Context, op, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list orders", logger.String("op", op), logger.Error(err))
		return nil, r.wrap(op, err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, r.wrap(op, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap(op, err)
	}
	return orders, nil
}

func (r *orderRepo) wrap(op string, err error) error {
	return errs.NewStorageError(op, err)
}

func getOrderByID(ctx context.Context, q querier, id int64, wrap func(string, error) error) (*models.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1`
	o, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewNotFoundError("order", id)
		}
		return nil, wrap("get order", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o             models.Order
		class, status string
	)
	err := row.Scan(
		&o.ID, &o.ClientID, &o.DriverID, &o.FromAddress, &o.ToAddress, &class,
		&o.DistanceKm, &o.Fare, &o.Currency, &o.Comment, &status, &o.IdempotencyKey,
		&o.CreatedAt, &o.UpdatedAt,
		&o.ClientName, &o.DriverName,
	)
	if err != nil {
		return nil, err
	}
	o.VehicleClass = models.VehicleClass(class)
	o.Status = models.OrderStatus(status)
	return &o, nil
}

func validateNewOrder(order *models.Order) error {
	if !models.ValidDistanceKm(order.DistanceKm) {
		return errs.NewValidationErrorWithCause("distance_km", fmt.Errorf("%v is outside [0, %d] km", order.DistanceKm, models.MaxDistanceKm))
	}
	if !order.VehicleClass.IsValid() {
		return errs.NewValidationErrorWithCause("vehicle_class", fmt.Errorf("%q is not a known vehicle class", order.VehicleClass))
	}
	return nil
}
