package user_repository_postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
	"yatube/internal/infrastructure/outbound/repository/postgres/db"
)

type UserRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewUserRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *UserRepository {
	return &UserRepository{db: db, log: log, metrics: metrics}
}

func (u *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	start := time.Now()
	query := `
		INSERT INTO users (username, password_hash)
		VALUES (@username, @password_hash)
		RETURNING id, username, password_hash, created_at`

	var created model.User
	err := u.db.QueryRow(ctx, query, pgx.NamedArgs{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
	}).Scan(&created.ID, &created.Username, &created.PasswordHash, &created.CreatedAt)
	if err != nil {
		u.metrics.IncrementDatabaseQueries("user_create", false)
		u.metrics.RecordDatabaseQueryDuration("user_create", time.Since(start))
		if code, _, ok := db.ConstraintName(err); ok && code == db.CodeUniqueViolation {
			return nil, custom_errors.ErrUsernameTaken
		}
		u.log.Error("Error creating user", slog.String("username", user.Username), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	u.metrics.IncrementDatabaseQueries("user_create", true)
	u.metrics.RecordDatabaseQueryDuration("user_create", time.Since(start))
	u.log.Info("User created", slog.Int64("id", created.ID), slog.String("username", created.Username))
	return &created, nil
}

func (u *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.getOne(ctx, "user_get_by_id",
		`SELECT id, username, password_hash, created_at FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (u *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.getOne(ctx, "user_get_by_username",
		`SELECT id, username, password_hash, created_at FROM users WHERE username = @username`,
		pgx.NamedArgs{"username": username})
}

func (u *UserRepository) getOne(ctx context.Context, op, query string, args pgx.NamedArgs) (*model.User, error) {
	start := time.Now()
	var user model.User
	err := u.db.QueryRow(ctx, query, args).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		u.metrics.IncrementDatabaseQueries(op, false)
		u.metrics.RecordDatabaseQueryDuration(op, time.Since(start))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_errors.ErrUserNotFound
		}
		u.log.Error("Error getting user", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	u.metrics.IncrementDatabaseQueries(op, true)
	u.metrics.RecordDatabaseQueryDuration(op, time.Since(start))
	return &user, nil
}

func (u *UserRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := u.db.Exec(ctx, `DELETE FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		u.metrics.IncrementDatabaseQueries("user_delete", false)
		u.metrics.RecordDatabaseQueryDuration("user_delete", time.Since(start))
		u.log.Error("Error deleting user", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	u.metrics.IncrementDatabaseQueries("user_delete", result.RowsAffected() > 0)
	u.metrics.RecordDatabaseQueryDuration("user_delete", time.Since(start))
	if result.RowsAffected() == 0 {
		return custom_errors.ErrUserNotFound
	}
	return nil
}
