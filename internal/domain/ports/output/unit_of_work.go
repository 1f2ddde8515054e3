package ports

import (
	"context"

	comment_repository "yatube/internal/domain/ports/output/comment"
	follow_repository "yatube/internal/domain/ports/output/follow"
	group_repository "yatube/internal/domain/ports/output/group"
	post_repository "yatube/internal/domain/ports/output/post"
	user_repository "yatube/internal/domain/ports/output/user"
)

type UnitOfWork interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction hands out repositories bound to one database transaction.
// Rollback after Commit returns pgx.ErrTxClosed.
type Transaction interface {
	PostRepository() post_repository.Repository
	GroupRepository() group_repository.Repository
	CommentRepository() comment_repository.Repository
	FollowRepository() follow_repository.Repository
	UserRepository() user_repository.Repository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
