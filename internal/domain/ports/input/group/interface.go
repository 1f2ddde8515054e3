package group_service

import (
	"context"

	model "yatube/internal/domain/models"
)

type Service interface {
	CreateGroup(ctx context.Context, group *model.Group) (*model.Group, error)
	DeleteGroup(ctx context.Context, slug string) error
	GetGroup(ctx context.Context, slug string) (*model.Group, error)
	ListGroups(ctx context.Context) ([]*model.Group, error)
}
