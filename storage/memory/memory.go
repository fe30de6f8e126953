// Package memory is a process-local implementation of the storage
// interfaces. One mutex guards all tables, which makes every operation,
// including ApplyTransition, atomic within the process.
package memory

import (
	"sync"
	"time"

	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/storage"
)

type Store struct {
	mu  sync.Mutex
	log logger.ILogger
	now func() time.Time

	users            map[int64]*models.User
	usersByTele      map[int64]int64
	orders           map[int64]*models.Order
	orderKeys        map[idempotencyKey]int64
	transitions      map[int64][]*models.OrderTransition
	nextUserID       int64
	nextOrderID      int64
	nextTransitionID int64
}

type idempotencyKey struct {
	clientID int64
	key      string
}

func New(log logger.ILogger) *Store {
	return &Store{
		log:         log,
		now:         time.Now,
		users:       make(map[int64]*models.User),
		usersByTele: make(map[int64]int64),
		orders:      make(map[int64]*models.Order),
		orderKeys:   make(map[idempotencyKey]int64),
		transitions: make(map[int64][]*models.OrderTransition),
	}
}

// WithClock replaces the time source. Tests use it to get distinct
// created_at values.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) User() storage.IUserStorage   { return &userRepo{s: s} }
func (s *Store) Order() storage.IOrderStorage { return &orderRepo{s: s} }

func (s *Store) Close() {}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	if o.DriverID != nil {
		d := *o.DriverID
		c.DriverID = &d
	}
	if o.Comment != nil {
		cm := *o.Comment
		c.Comment = &cm
	}
	if o.IdempotencyKey != nil {
		k := *o.IdempotencyKey
		c.IdempotencyKey = &k
	}
	return &c
}
