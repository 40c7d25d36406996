package usecase

import (
	"context"
	"time"

	"chargeslot/internal/domain/user"
	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/pkg/jwt"
	"chargeslot/internal/pkg/password"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errs.New("user not found")
	ErrEmailTaken           = errs.New("email already registered")
	ErrInvalidCredentials   = errs.New("invalid email or password")
	ErrUserInactive         = errs.New("user account is inactive")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type UserView struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	IsActive  bool       `json:"is_active"`
}

type AuthUseCase interface {
	Signup(ctx context.Context, email, rawPassword string, role user.Role) (*UserView, error)
	Login(ctx context.Context, email, rawPassword string) (string, *UserView, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserView, error)
	ValidateToken(tokenString string) (uuid.UUID, user.Role, error)
}

type authUseCaseImpl struct {
	uow        shared.UnitOfWork
	users      shared.UserRepository
	jwtService *jwt.Service
}

func NewAuthUseCase(uow shared.UnitOfWork, users shared.UserRepository, jwtService *jwt.Service) AuthUseCase {
	return &authUseCaseImpl{
		uow:        uow,
		users:      users,
		jwtService: jwtService,
	}
}

func (a *authUseCaseImpl) Signup(ctx context.Context, email, rawPassword string, role user.Role) (*UserView, error) {
	emailVO, err := user.NewEmail(email)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}
	passwordVO, err := user.NewPassword(rawPassword)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}
	hash, err := password.HashPassword(passwordVO.Value())
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	entity := user.NewUser(emailVO, hash, role)
	err = a.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		if err := a.users.Create(ctx, conn, entity); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toUserView(entity), nil
}

func (a *authUseCaseImpl) Login(ctx context.Context, email, rawPassword string) (string, *UserView, error) {
	var entity *user.User
	err := a.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		found, err := a.users.FindByEmail(ctx, conn, email)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrInvalidCredentials
			}
			return errs.Mark(err, ErrAuthenticationFailed)
		}
		entity = found
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	if !entity.IsActive() {
		return "", nil, ErrUserInactive
	}
	if err := password.ComparePassword(entity.PasswordHash(), rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.jwtService.GenerateToken(entity.ID(), entity.Role())
	if err != nil {
		return "", nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		return a.users.UpdateLastLogin(ctx, conn, entity.ID())
	})
	if err != nil {
		return "", nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	return token, toUserView(entity), nil
}

func (a *authUseCaseImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	var entity *user.User
	err := a.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		found, err := a.users.FindByID(ctx, conn, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrUserNotFound
			}
			return errs.Mark(err, ErrAuthenticationFailed)
		}
		entity = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !entity.IsActive() {
		return nil, ErrUserInactive
	}
	return toUserView(entity), nil
}

func (a *authUseCaseImpl) ValidateToken(tokenString string) (uuid.UUID, user.Role, error) {
	claims, err := a.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", ErrTokenValidation
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", ErrTokenValidation
	}
	return claims.UserID, role, nil
}

func toUserView(u *user.User) *UserView {
	return &UserView{
		ID:        u.ID(),
		Email:     u.Email().Value(),
		Role:      u.Role().String(),
		LastLogin: u.LastLogin(),
		IsActive:  u.IsActive(),
	}
}
