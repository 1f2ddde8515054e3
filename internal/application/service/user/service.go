package user_service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	user_port "yatube/internal/domain/ports/input/user"
	ports "yatube/internal/domain/ports/output"
	user_repository "yatube/internal/domain/ports/output/user"
)

var _ user_port.Service = (*UserService)(nil)

type UserService struct {
	userRepo user_repository.Repository
	tokens   ports.TokenManager
	log      ports.Logger
	cost     int
}

func NewUserService(userRepo user_repository.Repository, tokens ports.TokenManager, log ports.Logger) *UserService {
	return &UserService{userRepo: userRepo, tokens: tokens, log: log, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, custom_errors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		s.log.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, custom_errors.ErrInvalidInput
	}

	user, err := s.userRepo.Create(ctx, &model.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		return nil, err
	}
	s.log.Info("User registered", slog.Int64("id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Login checks the credentials and returns the user with a fresh session token.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, custom_errors.ErrUserNotFound) {
			return nil, "", custom_errors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debug("Password mismatch", slog.String("username", user.Username))
		return nil, "", custom_errors.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) IssueToken(user *model.User) (string, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		s.log.Error("Failed to issue token", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		return "", custom_errors.ErrInternal
	}
	return token, nil
}

// Authenticate resolves the user behind a session token.
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	id, err := s.tokens.Validate(token)
	if err != nil {
		return nil, custom_errors.ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, custom_errors.ErrUserNotFound) {
			return nil, custom_errors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}
