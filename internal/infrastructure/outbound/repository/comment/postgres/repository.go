package comment_repository_postgres

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

type CommentRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewCommentRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *CommentRepository {
	return &CommentRepository{db: db, log: log, metrics: metrics}
}

func (c *CommentRepository) Create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	start := time.Now()
	args := pgx.NamedArgs{
		"post_id":   comment.PostID,
		"author_id": comment.AuthorID,
		"text":      comment.Text,
	}
	query := `
		INSERT INTO comments (post_id, author_id, text)
		VALUES (@post_id, @author_id, @text)
		RETURNING id, post_id, author_id, text, created_at`

	var created model.Comment
	err := c.db.QueryRow(ctx, query, args).Scan(
		&created.ID,
		&created.PostID,
		&created.AuthorID,
		&created.Text,
		&created.CreatedAt,
	)
	if err != nil {
		c.metrics.IncrementDatabaseQueries("comment_create", false)
		c.metrics.RecordDatabaseQueryDuration("comment_create", time.Since(start))
		if _, _, ok := db.ConstraintName(err); ok {
			return nil, custom_errors.ErrForeignKey
		}
		c.log.Error("Error creating comment", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	c.metrics.IncrementDatabaseQueries("comment_create", true)
	c.metrics.RecordDatabaseQueryDuration("comment_create", time.Since(start))
	c.log.Debug("Successfully created comment", slog.Int64("id", created.ID))
	return &created, nil
}

func (c *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*model.CommentDetailed, error) {
	start := time.Now()
	query := `
		SELECT c.id, c.post_id, c.author_id, c.text, c.created_at,
		       u.id, u.username, u.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.post_id = @post_id
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := c.db.Query(ctx, query, pgx.NamedArgs{"post_id": postID})
	if err != nil {
		c.metrics.IncrementDatabaseQueries("comment_list", false)
		c.metrics.RecordDatabaseQueryDuration("comment_list", time.Since(start))
		c.log.Error("Error listing comments", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	comments := []*model.CommentDetailed{}
	for rows.Next() {
		var (
			comment  model.Comment
			authorID *int64
			username *string
			joined   model.User
		)
		if err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Text, &comment.CreatedAt,
			&authorID, &username, &joined.CreatedAt,
		); err != nil {
			c.metrics.IncrementDatabaseQueries("comment_list", false)
			c.metrics.RecordDatabaseQueryDuration("comment_list", time.Since(start))
			c.log.Error("Error scanning comment", slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
		d := &model.CommentDetailed{Comment: &comment}
		if authorID != nil {
			joined.ID = *authorID
			if username != nil {
				joined.Username = *username
			}
			d.Author = &joined
		}
		comments = append(comments, d)
	}
	if err := rows.Err(); err != nil {
		c.metrics.IncrementDatabaseQueries("comment_list", false)
		c.metrics.RecordDatabaseQueryDuration("comment_list", time.Since(start))
		c.log.Error("Error iterating comments", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	c.metrics.IncrementDatabaseQueries("comment_list", true)
	c.metrics.RecordDatabaseQueryDuration("comment_list", time.Since(start))
	return comments, nil
}
