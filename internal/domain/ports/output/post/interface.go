package post_repository

import (
	"context"

	model "yatube/internal/domain/models"
)

type Repository interface {
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	GetByID(ctx context.Context, id int64) (*model.PostDetailed, error)
	Update(ctx context.Context, post *model.Post) (*model.Post, error)
	Delete(ctx context.Context, id int64) error
	// Count and List share the ordering created_at DESC, id DESC, so a
	// (limit, offset) window of List is a stable slice of the whole feed.
	Count(ctx context.Context, scope model.FeedScope) (int, error)
	List(ctx context.Context, scope model.FeedScope, limit, offset int) ([]*model.PostDetailed, error)
}
