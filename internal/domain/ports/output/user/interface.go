package user_repository

import (
	"context"

	model "yatube/internal/domain/models"
)

type Repository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}
