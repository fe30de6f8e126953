package memory

import (
	"context"
	"fmt"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) GetOrCreateByTelegram(ctx context.Context, teleID int64, fullName string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.usersByTele[teleID]; ok {
		u := r.s.users[id]
		u.UpdatedAt = r.s.now()
		c := *u
		return &c, nil
	}

	tele := teleID
	return r.insert(&models.User{TelegramID: &tele, FullName: fullName, Role: models.RoleClient, Status: models.UserActive}), nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.NewNotFoundError("user", id)
	}
	c := *u
	return &c, nil
}

func (r *userRepo) GetByTelegramID(ctx context.Context, teleID int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.usersByTele[teleID]
	if !ok {
		return nil, errs.NewNotFoundError("user", teleID)
	}
	c := *r.s.users[id]
	return &c, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u := *user
	if u.Role == "" {
		u.Role = models.RoleClient
	}
	if u.Status == "" {
		u.Status = models.UserActive
	}
	if err := validateUser(&u); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.TelegramID != nil {
		if _, ok := r.s.usersByTele[*u.TelegramID]; ok {
			return nil, errs.NewValidationErrorWithCause("telegram_id", fmt.Errorf("telegram id %d already registered", *u.TelegramID))
		}
	}
	return r.insert(&u), nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	if err := validateUser(&models.User{Role: role, Status: models.UserActive}); err != nil {
		return err
	}
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *userRepo) update(id int64, apply func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return errs.NewNotFoundError("user", id)
	}
	apply(u)
	u.UpdatedAt = r.s.now()
	return nil
}

// insert stores u under a fresh id. Caller holds mu.
func (r *userRepo) insert(u *models.User) *models.User {
	r.s.nextUserID++
	u.ID = r.s.nextUserID
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	if u.TelegramID != nil {
		r.s.usersByTele[*u.TelegramID] = u.ID
	}
	c := *u
	return &c
}

func validateUser(u *models.User) error {
	switch u.Role {
	case models.RoleClient, models.RoleDriver, models.RoleAdmin:
	default:
		return errs.NewValidationErrorWithCause("role", fmt.Errorf("%q is not a known role", u.Role))
	}
	if u.Status != models.UserActive && u.Status != models.UserBlocked {
		return errs.NewValidationErrorWithCause("status", fmt.Errorf("%q is not a known user status", u.Status))
	}
	return nil
}
