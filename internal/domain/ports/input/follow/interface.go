package follow_service

import "context"

type Service interface {
	Follow(ctx context.Context, userID int64, authorUsername string) error
	// Unfollow is a no-op when the edge does not exist.
	Unfollow(ctx context.Context, userID int64, authorUsername string) error
	IsFollowing(ctx context.Context, userID, authorID int64) (bool, error)
}
