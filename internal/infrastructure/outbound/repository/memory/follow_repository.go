package memory

import (
	"context"
	"log/slog"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
)

type FollowRepository struct {
	src source
	log ports.Logger
}

func NewFollowRepository(store *Store, log ports.Logger) *FollowRepository {
	return &FollowRepository{src: store, log: log}
}

func (f *FollowRepository) Create(ctx context.Context, userID, authorID int64) (*model.Follow, error) {
	var created *model.Follow
	err := f.src.write(func(t *tables) error {
		if userID == authorID {
			return custom_errors.ErrSelfFollow
		}
		if _, ok := t.users[userID]; !ok {
			return custom_errors.ErrForeignKey
		}
		if _, ok := t.users[authorID]; !ok {
			return custom_errors.ErrForeignKey
		}
		for _, existing := range t.follows {
			if existing.UserID == userID && existing.AuthorID == authorID {
				return custom_errors.ErrAlreadyFollowing
			}
		}
		follow := &model.Follow{ID: t.nextFollowID, UserID: userID, AuthorID: authorID}
		t.nextFollowID++
		t.follows[follow.ID] = follow
		c := *follow
		created = &c
		return nil
	})
	if err != nil {
		f.log.Debug("Failed to create follow",
			slog.Int64("user_id", userID),
			slog.Int64("author_id", authorID),
			slog.String("error", err.Error()))
		return nil, err
	}
	return created, nil
}

func (f *FollowRepository) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	var removed bool
	err := f.src.write(func(t *tables) error {
		for id, existing := range t.follows {
			if existing.UserID == userID && existing.AuthorID == authorID {
				delete(t.follows, id)
				removed = true
			}
		}
		return nil
	})
	return removed, err
}

func (f *FollowRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var found bool
	err := f.src.read(func(t *tables) error {
		for _, existing := range t.follows {
			if existing.UserID == userID && existing.AuthorID == authorID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}
