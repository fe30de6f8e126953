package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/logger"
	"taxiorders/pkg/models"
	"taxiorders/storage"
)

const userColumns = `id, telegram_id, full_name, role, status, created_at, updated_at`

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func (r *userRepo) GetOrCreateByTelegram(ctx context.Context, teleID int64, fullName string) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, full_name, role, status)
		VALUES ($1, $2, 'client', 'active')
		ON CONFLICT (telegram_id) DO UPDATE
		SET updated_at = NOW()
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, teleID, fullName))
	if err != nil {
		r.log.Error("failed to get or create user", logger.Int64("telegram_id", teleID), logger.Error(err))
		return nil, errs.NewStorageError("get or create user", err)
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewNotFoundError("user", id)
		}
		r.log.Error("failed to get user by id", logger.Int64("id", id), logger.Error(err))
		return nil, errs.NewStorageError("get user", err)
	}
	return user, nil
}

func (r *userRepo) GetByTelegramID(ctx context.Context, teleID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, teleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewNotFoundError("user", teleID)
		}
		r.log.Error("failed to get user by telegram id", logger.Int64("telegram_id", teleID), logger.Error(err))
		return nil, errs.NewStorageError("get user", err)
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Role == "" {
		user.Role = models.RoleClient
	}
	if user.Status == "" {
		user.Status = models.UserActive
	}
	query := `
		INSERT INTO users (telegram_id, full_name, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	created, err := scanUser(r.db.QueryRow(ctx, query, user.TelegramID, user.FullName, string(user.Role), user.Status))
	if err != nil {
		if code, constraint := pgErrorCode(err); code == codeCheckViolation {
			return nil, errs.NewValidationErrorWithCause(constraint, err)
		}
		r.log.Error("failed to create user", logger.Error(err))
		return nil, errs.NewStorageError("create user", err)
	}
	return created, nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	return r.exec(ctx, "update user role", "UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2", id, string(role), id)
}

func (r *userRepo) exec(ctx context.Context, op, query string, id int64, args ...interface{}) error {
	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == codeCheckViolation {
			return errs.NewValidationErrorWithCause(constraint, err)
		}
		r.log.Error("failed to "+op, logger.Int64("id", id), logger.Error(err))
		return errs.NewStorageError(op, err)
	}
	if res.RowsAffected() == 0 {
		return errs.NewNotFoundError("user", id)
	}
	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u    models.User
		role string
	)
	err := row.Scan(&u.ID, &u.TelegramID, &u.FullName, &role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}
