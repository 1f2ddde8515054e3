package follow_service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"yatube/internal/custom_errors"
	follow_port "yatube/internal/domain/ports/input/follow"
	ports "yatube/internal/domain/ports/output"
	follow_repository "yatube/internal/domain/ports/output/follow"
)

var _ follow_port.Service = (*FollowService)(nil)

type FollowService struct {
	followRepo follow_repository.Repository
	uow        ports.UnitOfWork
	log        ports.Logger
	metrics    ports.MetricsProvider
}

func NewFollowService(
	followRepo follow_repository.Repository,
	uow ports.UnitOfWork,
	log ports.Logger,
	metrics ports.MetricsProvider,
) *FollowService {
	return &FollowService{followRepo: followRepo, uow: uow, log: log, metrics: metrics}
}

// Follow adds the edge userID -> author. Following yourself or an author
// you already follow is a constraint violation.
func (s *FollowService) Follow(ctx context.Context, userID int64, authorUsername string) (err error) {
	defer func() { s.metrics.IncrementFollowOperations("follow", err == nil) }()

	if userID <= 0 {
		return custom_errors.ErrUnauthenticated
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	var txCommitted bool
	defer func() {
		if !txCommitted {
			s.rollback(ctx, tx)
		}
	}()

	author, err := tx.UserRepository().GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	if author.ID == userID {
		s.log.Debug("Rejected self follow", slog.Int64("user_id", userID))
		return custom_errors.ErrSelfFollow
	}

	exists, err := tx.FollowRepository().Exists(ctx, userID, author.ID)
	if err != nil {
		return err
	}
	if exists {
		return custom_errors.ErrAlreadyFollowing
	}

	if _, err = tx.FollowRepository().Create(ctx, userID, author.ID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	txCommitted = true

	s.log.Info("User followed author", slog.Int64("user_id", userID), slog.Int64("author_id", author.ID))
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, userID int64, authorUsername string) (err error) {
	defer func() { s.metrics.IncrementFollowOperations("unfollow", err == nil) }()

	if userID <= 0 {
		return custom_errors.ErrUnauthenticated
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	var txCommitted bool
	defer func() {
		if !txCommitted {
			s.rollback(ctx, tx)
		}
	}()

	author, err := tx.UserRepository().GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}

	removed, err := tx.FollowRepository().Delete(ctx, userID, author.ID)
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	txCommitted = true

	s.log.Info("User unfollowed author",
		slog.Int64("user_id", userID),
		slog.Int64("author_id", author.ID),
		slog.Bool("removed", removed))
	return nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

func (s *FollowService) rollback(ctx context.Context, tx ports.Transaction) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.log.Error("Failed to rollback transaction", slog.String("error", err.Error()))
	}
}
