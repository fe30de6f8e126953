package models

import (
	"fmt"
	"time"

	"taxiorders/pkg/errs"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusAccepted   OrderStatus = "accepted"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.IsValid() {
		return "", errs.NewValidationErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
	}
	return status, nil
}

// MaxDistanceKm bounds a single ride. Longer distances are input errors.
const MaxDistanceKm = 20000

// ValidDistanceKm is false for negative, NaN, infinite and over-long distances.
func ValidDistanceKm(d float64) bool {
	return d >= 0 && d <= MaxDistanceKm
}

type VehicleClass string

const (
	ClassEconomy  VehicleClass = "economy"
	ClassComfort  VehicleClass = "comfort"
	ClassBusiness VehicleClass = "business"
)

func (c VehicleClass) IsValid() bool {
	switch c {
	case ClassEconomy, ClassComfort, ClassBusiness:
		return true
	}
	return false
}

func ParseVehicleClass(s string) (VehicleClass, error) {
	class := VehicleClass(s)
	if !class.IsValid() {
		return "", errs.NewValidationErrorWithCause("vehicle_class", fmt.Errorf("%q is not a known vehicle class", s))
	}
	return class, nil
}

type Order struct {
	ID             int64        `json:"id"`
	ClientID       int64        `json:"client_id"`
	DriverID       *int64       `json:"driver_id"`
	FromAddress    string       `json:"from_address"`
	ToAddress      string       `json:"to_address"`
	VehicleClass   VehicleClass `json:"vehicle_class"`
	DistanceKm     float64      `json:"distance_km"`
	Fare           float64      `json:"fare"`
	Currency       string       `json:"currency"`
	Comment        *string      `json:"comment,omitempty"`
	Status         OrderStatus  `json:"status"`
	IdempotencyKey *string      `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Joined from users on read.
	ClientName string `json:"client_name,omitempty"`
	DriverName string `json:"driver_name,omitempty"`
}

// IsBoundTo reports whether driverID is the driver currently bound to the order.
func (o *Order) IsBoundTo(driverID int64) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}

type CreateOrderRequest struct {
	FromAddress    string
	ToAddress      string
	VehicleClass   VehicleClass
	DistanceKm     float64
	Comment        *string
	IdempotencyKey *string
}

// OrderFilter narrows a status listing. Nil fields do not filter.
type OrderFilter struct {
	Status   *OrderStatus
	DriverID *int64
}

// TransitionParams describes one compare-and-swap write. The store applies
// NewStatus only while the row still has ExpectedStatus and, if set, is
// still bound to ExpectedDriverID. BindDriverID binds an unbound order.
type TransitionParams struct {
	OrderID          int64
	ExpectedStatus   OrderStatus
	NewStatus        OrderStatus
	ExpectedDriverID *int64
	BindDriverID     *int64
	Action           Action
	Actor            Actor
}

type OrderTransition struct {
	ID         int64       `json:"id"`
	OrderID    int64       `json:"order_id"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status"`
	Action     Action      `json:"action"`
	ActorID    int64       `json:"actor_id"`
	ActorRole  Role        `json:"actor_role"`
	CreatedAt  time.Time   `json:"created_at"`
}
