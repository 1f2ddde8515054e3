package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ports "yatube/internal/domain/ports/output"
	comment_repository "yatube/internal/domain/ports/output/comment"
	follow_repository "yatube/internal/domain/ports/output/follow"
	group_repository "yatube/internal/domain/ports/output/group"
	post_repository "yatube/internal/domain/ports/output/post"
	user_repository "yatube/internal/domain/ports/output/user"
	comment_repository_postgres "yatube/internal/infrastructure/outbound/repository/comment/postgres"
	follow_repository_postgres "yatube/internal/infrastructure/outbound/repository/follow/postgres"
	group_repository_postgres "yatube/internal/infrastructure/outbound/repository/group/postgres"
	post_repository_postgres "yatube/internal/infrastructure/outbound/repository/post/postgres"
	user_repository_postgres "yatube/internal/infrastructure/outbound/repository/user/postgres"
)

type PostgresUnitOfWork struct {
	pool    *pgxpool.Pool
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewPostgresUOW(pool *pgxpool.Pool, log ports.Logger, metrics ports.MetricsProvider) ports.UnitOfWork {
	return &PostgresUnitOfWork{pool: pool, log: log, metrics: metrics}
}

func (uow *PostgresUnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	tx, err := uow.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return &PostgresTransaction{tx: tx, log: uow.log, metrics: uow.metrics}, nil
}

type PostgresTransaction struct {
	tx      pgx.Tx
	log     ports.Logger
	metrics ports.MetricsProvider
}

func (t *PostgresTransaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *PostgresTransaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *PostgresTransaction) PostRepository() post_repository.Repository {
	return post_repository_postgres.NewPostRepository(t.tx, t.log, t.metrics)
}

func (t *PostgresTransaction) GroupRepository() group_repository.Repository {
	return group_repository_postgres.NewGroupRepository(t.tx, t.log, t.metrics)
}

func (t *PostgresTransaction) CommentRepository() comment_repository.Repository {
	return comment_repository_postgres.NewCommentRepository(t.tx, t.log, t.metrics)
}

func (t *PostgresTransaction) FollowRepository() follow_repository.Repository {
	return follow_repository_postgres.NewFollowRepository(t.tx, t.log, t.metrics)
}

func (t *PostgresTransaction) UserRepository() user_repository.Repository {
	return user_repository_postgres.NewUserRepository(t.tx, t.log, t.metrics)
}
