package storage

import (
	"context"

	"taxiorders/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Order() IOrderStorage
	Close()
}

type IUserStorage interface {
	GetOrCreateByTelegram(ctx context.Context, teleID int64, fullName string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByTelegramID(ctx context.Context, teleID int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) error
}

// IOrderStorage owns order rows. ApplyTransition is the only way an existing
// order changes, and it must be atomic with respect to concurrent callers.
type IOrderStorage interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetClientOrders(ctx context.Context, clientID int64) ([]*models.Order, error)
	GetByStatus(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error)
	ApplyTransition(ctx context.Context, params models.TransitionParams) (*models.Order, error)
	GetTransitions(ctx context.Context, orderID int64) ([]*models.OrderTransition, error)
}
