package feed_service

import (
	"context"

	model "yatube/internal/domain/models"
)

// Service assembles paginated feeds. Page numbers are 1-based; a page past
// the last one is returned empty.
type Service interface {
	Index(ctx context.Context, page int) (*model.Page, error)
	Group(ctx context.Context, slug string, page int) (*model.Group, *model.Page, error)
	// Profile resolves the author feed. viewerID is zero for guests.
	Profile(ctx context.Context, username string, viewerID int64, page int) (*model.Profile, *model.Page, error)
	Follow(ctx context.Context, userID int64, page int) (*model.Page, error)
}
