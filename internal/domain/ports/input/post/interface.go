package post_service

import (
	"context"

	model "yatube/internal/domain/models"
)

type Service interface {
	CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.PostDetailed, error)
	GetPost(ctx context.Context, id int64) (*model.PostView, error)
	UpdatePost(ctx context.Context, actorID, postID int64, update *model.UpdatePostDTO) (*model.PostDetailed, error)
	AddComment(ctx context.Context, comment *model.CreateCommentDTO) (*model.CommentDetailed, error)
	DeletePost(ctx context.Context, postID int64) error
}
