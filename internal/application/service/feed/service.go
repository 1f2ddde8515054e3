package feed_service

import (
	"context"
	"errors"
	"log/slog"

	"yatube/internal/application/pagination"
	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	feed_port "yatube/internal/domain/ports/input/feed"
	follow_port "yatube/internal/domain/ports/input/follow"
	ports "yatube/internal/domain/ports/output"
	group_repository "yatube/internal/domain/ports/output/group"
	post_repository "yatube/internal/domain/ports/output/post"
	user_repository "yatube/internal/domain/ports/output/user"
)

var _ feed_port.Service = (*FeedService)(nil)

type FeedService struct {
	postRepo  post_repository.Repository
	groupRepo group_repository.Repository
	userRepo  user_repository.Repository
	follows   follow_port.Service
	pageSize  int
	log       ports.Logger
}

func NewFeedService(
	postRepo post_repository.Repository,
	groupRepo group_repository.Repository,
	userRepo user_repository.Repository,
	follows follow_port.Service,
	pageSize int,
	log ports.Logger,
) *FeedService {
	return &FeedService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		follows:   follows,
		pageSize:  pageSize,
		log:       log,
	}
}

func (s *FeedService) Index(ctx context.Context, page int) (*model.Page, error) {
	return s.page(ctx, model.AllPosts(), page)
}

func (s *FeedService) Group(ctx context.Context, slug string, page int) (*model.Group, *model.Page, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, custom_errors.ErrGroupNotFound) {
			s.log.Error("Failed to get group", slog.String("slug", slug), slog.String("error", err.Error()))
		}
		return nil, nil, err
	}

	feed, err := s.page(ctx, model.GroupPosts(group.ID), page)
	if err != nil {
		return nil, nil, err
	}
	return group, feed, nil
}

func (s *FeedService) Profile(ctx context.Context, username string, viewerID int64, page int) (*model.Profile, *model.Page, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, custom_errors.ErrUserNotFound) {
			s.log.Error("Failed to get profile author", slog.String("username", username), slog.String("error", err.Error()))
		}
		return nil, nil, err
	}

	feed, err := s.page(ctx, model.AuthorPosts(author.ID), page)
	if err != nil {
		return nil, nil, err
	}

	profile := &model.Profile{Author: author, PostCount: feed.TotalItems}
	if viewerID != author.ID {
		profile.Following, err = s.follows.IsFollowing(ctx, viewerID, author.ID)
		if err != nil {
			s.log.Error("Failed to check follow", slog.Int64("user_id", viewerID), slog.String("error", err.Error()))
			return nil, nil, err
		}
	}
	return profile, feed, nil
}

func (s *FeedService) Follow(ctx context.Context, userID int64, page int) (*model.Page, error) {
	if userID <= 0 {
		return nil, custom_errors.ErrUnauthenticated
	}
	return s.page(ctx, model.FollowedPosts(userID), page)
}

// page counts the scope, then fetches only the rows of the requested window.
func (s *FeedService) page(ctx context.Context, scope model.FeedScope, number int) (*model.Page, error) {
	total, err := s.postRepo.Count(ctx, scope)
	if err != nil {
		s.log.Error("Failed to count feed", slog.String("scope", string(scope.Kind)), slog.String("error", err.Error()))
		return nil, err
	}

	w := pagination.NewWindow(total, s.pageSize, number)
	if w.Len() == 0 {
		return pagination.NewPage(w, nil), nil
	}

	items, err := s.postRepo.List(ctx, scope, w.Size, w.Offset())
	if err != nil {
		s.log.Error("Failed to list feed", slog.String("scope", string(scope.Kind)), slog.String("error", err.Error()))
		return nil, err
	}

	s.log.Debug("Feed page assembled",
		slog.String("scope", string(scope.Kind)),
		slog.Int("page", w.Number),
		slog.Int("items", len(items)))
	return pagination.NewPage(w, items), nil
}
