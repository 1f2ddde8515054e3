package user_service

import (
	"context"

	model "yatube/internal/domain/models"
)

type Service interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
	IssueToken(user *model.User) (string, error)
}
