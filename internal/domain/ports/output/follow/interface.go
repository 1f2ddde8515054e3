package follow_repository

import (
	"context"

	model "yatube/internal/domain/models"
)

type Repository interface {
	Create(ctx context.Context, userID, authorID int64) (*model.Follow, error)
	// Delete reports whether an edge was removed.
	Delete(ctx context.Context, userID, authorID int64) (bool, error)
	Exists(ctx context.Context, userID, authorID int64) (bool, error)
}
