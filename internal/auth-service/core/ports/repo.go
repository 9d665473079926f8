package ports

import (
	"context"
	"errors"

	"foodbridge/internal/auth-service/core/domain/models"
)

var (
	ErrUnknownEmail    = errors.New("unknown email")
	ErrEmailRegistered = errors.New("email already registered")
)

type IAuthRepo interface {
	Create(ctx context.Context, user models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}
