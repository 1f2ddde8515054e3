package post_repository_postgres

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

const detailedColumns = `
	p.id, p.text, p.author_id, p.group_id, p.image, p.created_at,
	u.id, u.username, u.created_at,
	g.id, g.title, g.slug, g.description`

const detailedFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

type PostRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewPostRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *PostRepository {
	return &PostRepository{db: db, log: log, metrics: metrics}
}

func (p *PostRepository) record(op string, start time.Time, success bool) {
	p.metrics.IncrementDatabaseQueries(op, success)
	p.metrics.RecordDatabaseQueryDuration(op, time.Since(start))
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	start := time.Now()
	p.log.Debug("Creating new post", slog.Int64("author_id", post.AuthorID))

	args := pgx.NamedArgs{
		"text":      post.Text,
		"author_id": post.AuthorID,
		"group_id":  post.GroupID,
		"image":     post.Image,
	}

	query := `
		INSERT INTO posts (text, author_id, group_id, image)
		VALUES (@text, @author_id, @group_id, @image)
		RETURNING id, text, author_id, group_id, image, created_at`

	var created model.Post
	err := p.db.QueryRow(ctx, query, args).Scan(
		&created.ID,
		&created.Text,
		&created.AuthorID,
		&created.GroupID,
		&created.Image,
		&created.CreatedAt,
	)
	if err != nil {
		p.record("post_create", start, false)
		if _, _, ok := db.ConstraintName(err); ok {
			p.log.Debug("Post references a missing row", slog.Int64("author_id", post.AuthorID), slog.String("error", err.Error()))
			return nil, custom_errors.ErrForeignKey
		}
		p.log.Error("Error creating post", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_create", start, true)
	p.log.Debug("Successfully created post", slog.Int64("id", created.ID), slog.Int64("author_id", created.AuthorID))
	return &created, nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.PostDetailed, error) {
	start := time.Now()
	p.log.Debug("Getting post by ID", slog.Int64("id", id))

	query := `SELECT ` + detailedColumns + detailedFrom + ` WHERE p.id = @id`
	post, err := scanDetailed(p.db.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
	if err != nil {
		p.record("post_get_by_id", start, false)
		if errors.Is(err, pgx.ErrNoRows) {
			p.log.Debug("Post not found by id", slog.Int64("id", id))
			return nil, custom_errors.ErrPostNotFound
		}
		p.log.Error("Error getting post by id", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_get_by_id", start, true)
	return post, nil
}

func (p *PostRepository) Update(ctx context.Context, post *model.Post) (*model.Post, error) {
	start := time.Now()
	p.log.Debug("Updating post", slog.Int64("id", post.ID))

	args := pgx.NamedArgs{
		"id":       post.ID,
		"text":     post.Text,
		"group_id": post.GroupID,
		"image":    post.Image,
	}
	query := `
		UPDATE posts SET text = @text, group_id = @group_id, image = @image
		WHERE id = @id
		RETURNING id, text, author_id, group_id, image, created_at`

	var updated model.Post
	err := p.db.QueryRow(ctx, query, args).Scan(
		&updated.ID,
		&updated.Text,
		&updated.AuthorID,
		&updated.GroupID,
		&updated.Image,
		&updated.CreatedAt,
	)
	if err != nil {
		p.record("post_update", start, false)
		if errors.Is(err, pgx.ErrNoRows) {
			p.log.Debug("Post not found by id during Update", slog.Int64("id", post.ID))
			return nil, custom_errors.ErrPostNotFound
		}
		if _, _, ok := db.ConstraintName(err); ok {
			return nil, custom_errors.ErrForeignKey
		}
		p.log.Error("Error updating post", slog.Int64("id", post.ID), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_update", start, true)
	p.log.Debug("Successfully updated post", slog.Int64("id", updated.ID))
	return &updated, nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	p.log.Debug("Deleting post", slog.Int64("id", id))

	result, err := p.db.Exec(ctx, `DELETE FROM posts WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		p.record("post_delete", start, false)
		p.log.Error("Error deleting post", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if result.RowsAffected() == 0 {
		p.record("post_delete", start, false)
		p.log.Debug("Post not found during deletion", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}

	p.record("post_delete", start, true)
	p.log.Debug("Successfully deleted post", slog.Int64("id", id))
	return nil
}

func (p *PostRepository) Count(ctx context.Context, scope model.FeedScope) (int, error) {
	start := time.Now()
	where, args, err := scopeFilter(scope)
	if err != nil {
		return 0, err
	}

	var total int
	query := `SELECT COUNT(*) FROM posts p` + where
	if err := p.db.QueryRow(ctx, query, args).Scan(&total); err != nil {
		p.record("post_count", start, false)
		p.log.Error("Error counting posts", slog.String("scope", string(scope.Kind)), slog.String("error", err.Error()))
		return 0, custom_errors.ErrDatabaseQuery
	}

	p.record("post_count", start, true)
	return total, nil
}

func (p *PostRepository) List(ctx context.Context, scope model.FeedScope, limit, offset int) ([]*model.PostDetailed, error) {
	start := time.Now()
	p.log.Debug("Listing posts",
		slog.String("scope", string(scope.Kind)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	if limit < 0 || offset < 0 {
		return nil, custom_errors.ErrInvalidInput
	}
	where, args, err := scopeFilter(scope)
	if err != nil {
		return nil, err
	}
	args["limit"] = limit
	args["offset"] = offset

	query := `SELECT ` + detailedColumns + detailedFrom + where + `
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := p.db.Query(ctx, query, args)
	if err != nil {
		p.record("post_list", start, false)
		p.log.Error("Error listing posts", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	posts := make([]*model.PostDetailed, 0, limit)
	for rows.Next() {
		post, err := scanDetailed(rows)
		if err != nil {
			p.record("post_list", start, false)
			p.log.Error("Error scanning post during List", slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		p.record("post_list", start, false)
		p.log.Error("Error iterating rows during List", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_list", start, true)
	p.log.Debug("Successfully listed posts", slog.Int("count", len(posts)))
	return posts, nil
}

func scopeFilter(scope model.FeedScope) (string, pgx.NamedArgs, error) {
	if err := scope.IsValid(); err != nil {
		return "", nil, custom_errors.ErrInvalidInput
	}
	args := pgx.NamedArgs{}
	switch scope.Kind {
	case model.ScopeGroup:
		args["group_id"] = scope.GroupID
		return ` WHERE p.group_id = @group_id`, args, nil
	case model.ScopeAuthor:
		args["author_id"] = scope.AuthorID
		return ` WHERE p.author_id = @author_id`, args, nil
	case model.ScopeFollows:
		args["follower_id"] = scope.FollowerID
		return ` WHERE p.author_id IN (SELECT f.author_id FROM follows f WHERE f.user_id = @follower_id)`, args, nil
	}
	return "", args, nil
}

func scanDetailed(row pgx.Row) (*model.PostDetailed, error) {
	var (
		post   model.Post
		author model.User
		gID    *int64
		gTitle *string
		gSlug  *string
		gDesc  *string
	)
	err := row.Scan(
		&post.ID, &post.Text, &post.AuthorID, &post.GroupID, &post.Image, &post.CreatedAt,
		&author.ID, &author.Username, &author.CreatedAt,
		&gID, &gTitle, &gSlug, &gDesc,
	)
	if err != nil {
		return nil, err
	}

	detailed := &model.PostDetailed{Post: &post, Author: &author}
	if gID != nil {
		detailed.Group = &model.Group{ID: *gID, Title: deref(gTitle), Slug: deref(gSlug), Description: deref(gDesc)}
	}
	return detailed, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
