package comment_repository

import (
	"context"

	model "yatube/internal/domain/models"
)

type Repository interface {
	Create(ctx context.Context, comment *model.Comment) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*model.CommentDetailed, error)
}
