package group_repository

import (
	"context"

	model "yatube/internal/domain/models"
)

type Repository interface {
	Create(ctx context.Context, group *model.Group) (*model.Group, error)
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	GetBySlug(ctx context.Context, slug string) (*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
	Delete(ctx context.Context, id int64) error
}
