package memory

import (
	"context"
	"log/slog"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
)

type UserRepository struct {
	src   source
	store *Store
	log   ports.Logger
}

func NewUserRepository(store *Store, log ports.Logger) *UserRepository {
	return &UserRepository{src: store, store: store, log: log}
}

func (u *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	var created *model.User
	err := u.src.write(func(t *tables) error {
		for _, existing := range t.users {
			if existing.Username == user.Username {
				return custom_errors.ErrUsernameTaken
			}
		}
		newUser := copyUser(user)
		newUser.ID = t.nextUserID
		newUser.CreatedAt = u.store.timestamp()
		t.nextUserID++
		t.users[newUser.ID] = newUser
		created = copyUser(newUser)
		return nil
	})
	if err != nil {
		u.log.Debug("Failed to create user", slog.String("username", user.Username), slog.String("error", err.Error()))
		return nil, err
	}
	return created, nil
}

func (u *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var result *model.User
	err := u.src.read(func(t *tables) error {
		user, ok := t.users[id]
		if !ok {
			return custom_errors.ErrUserNotFound
		}
		result = copyUser(user)
		return nil
	})
	return result, err
}

func (u *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var result *model.User
	err := u.src.read(func(t *tables) error {
		for _, user := range t.users {
			if user.Username == username {
				result = copyUser(user)
				return nil
			}
		}
		return custom_errors.ErrUserNotFound
	})
	if err != nil {
		u.log.Debug("User not found by username", slog.String("username", username))
		return nil, err
	}
	return result, nil
}

func (u *UserRepository) Delete(ctx context.Context, id int64) error {
	return u.src.write(func(t *tables) error {
		if _, ok := t.users[id]; !ok {
			return custom_errors.ErrUserNotFound
		}
		t.deleteUser(id)
		return nil
	})
}
