package service

import (
	"context"
	"errors"
	"fmt"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/storage"
)

// UserService resolves callers into actors. Authentication happens upstream;
// ids arriving here are trusted.
type UserService interface {
	Resolve(ctx context.Context, userID int64) (models.Actor, error)
	ResolveTelegram(ctx context.Context, teleID int64, fullName string) (*models.User, error)
	Promote(ctx context.Context, userID int64, role models.Role) error
	RequireClient(ctx context.Context, clientID int64) error
}

type userService struct {
	stg   storage.IUserStorage
	retry retrier
	log   logger.ILogger
}

func NewUserService(stg storage.IStorage, retry retrier, log logger.ILogger) UserService {
	return &userService{
		stg:   stg.User(),
		retry: retry,
		log:   log,
	}
}

func (s *userService) Resolve(ctx context.Context, userID int64) (models.Actor, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return models.Actor{}, err
	}
	if user.Status == models.UserBlocked {
		return models.Actor{}, errs.NewForbiddenError(userID, "user is blocked")
	}
	return models.Actor{ID: user.ID, Role: user.Role}, nil
}

func (s *userService) ResolveTelegram(ctx context.Context, teleID int64, fullName string) (*models.User, error) {
	return retryWithData(ctx, s.retry, "get or create user", func() (*models.User, error) {
		return s.stg.GetOrCreateByTelegram(ctx, teleID, fullName)
	})
}

func (s *userService) Promote(ctx context.Context, userID int64, role models.Role) error {
	if err := s.stg.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.log.Info("user role changed", logger.Int64("user_id", userID), logger.String("role", string(role)))
	return nil
}

// RequireClient reports a ValidationError unless clientID is an active client.
func (s *userService) RequireClient(ctx context.Context, clientID int64) error {
	user, err := s.get(ctx, clientID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.NewValidationErrorWithCause("client_id", fmt.Errorf("client %d does not exist", clientID))
		}
		return err
	}
	if user.Role != models.RoleClient {
		return errs.NewValidationErrorWithCause("client_id", fmt.Errorf("user %d is a %s, not a client", clientID, user.Role))
	}
	if user.Status == models.UserBlocked {
		return errs.NewValidationErrorWithCause("client_id", fmt.Errorf("client %d is blocked", clientID))
	}
	return nil
}

func (s *userService) get(ctx context.Context, userID int64) (*models.User, error) {
	return retryWithData(ctx, s.retry, "get user", func() (*models.User, error) {
		return s.stg.GetByID(ctx, userID)
	})
}
