package follow_repository_postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
	"yatube/internal/infrastructure/outbound/repository/postgres/db"
)

const (
	constraintSelfFollow = "could_not_follow_itself"
	constraintUnique     = "unique_follower"
)

type FollowRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewFollowRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *FollowRepository {
	return &FollowRepository{db: db, log: log, metrics: metrics}
}

func (f *FollowRepository) record(op string, start time.Time, success bool) {
	f.metrics.IncrementDatabaseQueries(op, success)
	f.metrics.RecordDatabaseQueryDuration(op, time.Since(start))
}

func (f *FollowRepository) Create(ctx context.Context, userID, authorID int64) (*model.Follow, error) {
	start := time.Now()
	f.log.Debug("Creating follow", slog.Int64("user_id", userID), slog.Int64("author_id", authorID))

	query := `
		INSERT INTO follows (user_id, author_id)
		VALUES (@user_id, @author_id)
		RETURNING id, user_id, author_id`

	var follow model.Follow
	err := f.db.QueryRow(ctx, query, pgx.NamedArgs{"user_id": userID, "author_id": authorID}).
		Scan(&follow.ID, &follow.UserID, &follow.AuthorID)
	if err != nil {
		f.record("follow_create", start, false)
		if mapped := constraintError(err); mapped != nil {
			f.log.Debug("Follow rejected by constraint",
				slog.Int64("user_id", userID),
				slog.Int64("author_id", authorID),
				slog.String("error", mapped.Error()))
			return nil, mapped
		}
		f.log.Error("Error creating follow", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	f.record("follow_create", start, true)
	return &follow, nil
}

func constraintError(err error) error {
	code, constraint, ok := db.ConstraintName(err)
	if !ok {
		return nil
	}
	switch {
	case constraint == constraintSelfFollow || code == db.CodeCheckViolation:
		return custom_errors.ErrSelfFollow
	case constraint == constraintUnique || code == db.CodeUniqueViolation:
		return custom_errors.ErrAlreadyFollowing
	default:
		return custom_errors.ErrForeignKey
	}
}

func (f *FollowRepository) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	start := time.Now()
	result, err := f.db.Exec(ctx, `DELETE FROM follows WHERE user_id = @user_id AND author_id = @author_id`,
		pgx.NamedArgs{"user_id": userID, "author_id": authorID})
	if err != nil {
		f.record("follow_delete", start, false)
		f.log.Error("Error deleting follow", slog.String("error", err.Error()))
		return false, custom_errors.ErrDatabaseQuery
	}
	f.record("follow_delete", start, true)
	return result.RowsAffected() > 0, nil
}

func (f *FollowRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	start := time.Now()
	var exists bool
	err := f.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = @user_id AND author_id = @author_id)`,
		pgx.NamedArgs{"user_id": userID, "author_id": authorID}).Scan(&exists)
	if err != nil {
		f.record("follow_exists", start, false)
		f.log.Error("Error checking follow", slog.String("error", err.Error()))
		return false, custom_errors.ErrDatabaseQuery
	}
	f.record("follow_exists", start, true)
	return exists, nil
}
