package service

import (
	"taxiorders/config"
	"taxiorders/pkg/logger"
	"taxiorders/storage"
)

type IServiceManager interface {
	User() UserService
	Order() OrderService
	Query() OrderQuery
}

type service struct {
	userService  UserService
	orderService OrderService
	orderQuery   OrderQuery
}

func New(stg storage.IStorage, cfg config.Config, log logger.ILogger) IServiceManager {
	retry := newRetrier(cfg.RetryMaxAttempts, cfg.RetryInitialInterval, log)
	users := NewUserService(stg, retry, log)

	return &service{
		userService:  users,
		orderService: NewOrderService(stg, users, cfg.Currency, retry, log),
		orderQuery:   NewOrderQuery(stg, retry, log),
	}
}

func (s *service) User() UserService {
	return s.userService
}

func (s *service) Order() OrderService {
	return s.orderService
}

func (s *service) Query() OrderQuery {
	return s.orderQuery
}
