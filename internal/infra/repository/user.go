package repository

import (
	"context"
	"time"

	"chargeslot/internal/domain/user"
	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(ctx context.Context, tx db.DBTX, u *user.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, u.ID(), u.Email().Value(), u.PasswordHash(), u.Role().String(), u.IsActive())
	if err != nil {
		return infra.WrapRepoErr("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error {
	const query = `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, tx db.DBTX, email string) (*user.User, error) {
	const query = `
		SELECT id, email, password_hash, role, last_login, is_active, created_at, updated_at
		FROM users WHERE email = $1`

	var (
		id                   uuid.UUID
		emailStr, hash, role string
		lastLogin            *time.Time
		isActive             bool
		createdAt, updatedAt time.Time
	)
	err := tx.QueryRow(ctx, query, email).Scan(&id, &emailStr, &hash, &role, &lastLogin, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}

	emailVO, err := user.NewEmail(emailStr)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt user email", err)
	}
	roleVO, err := user.NewRole(role)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt user role", err)
	}

	return user.ReconstructUser(id, emailVO, hash, roleVO, lastLogin, isActive, createdAt, updatedAt), nil
}

func (r *UserRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*user.User, error) {
	const query = `
		SELECT id, email, password_hash, role, last_login, is_active, created_at, updated_at
		FROM users WHERE id = $1`

	var (
		userID               uuid.UUID
		emailStr, hash, role string
		lastLogin            *time.Time
		isActive             bool
		createdAt, updatedAt time.Time
	)
	err := tx.QueryRow(ctx, query, id).Scan(&userID, &emailStr, &hash, &role, &lastLogin, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by id", err)
	}

	emailVO, err := user.NewEmail(emailStr)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt user email", err)
	}
	roleVO, err := user.NewRole(role)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt user role", err)
	}

	return user.ReconstructUser(userID, emailVO, hash, roleVO, lastLogin, isActive, createdAt, updatedAt), nil
}
