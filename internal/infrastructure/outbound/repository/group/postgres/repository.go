package group_repository_postgres

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

type GroupRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewGroupRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *GroupRepository {
	return &GroupRepository{db: db, log: log, metrics: metrics}
}

func (g *GroupRepository) record(op string, start time.Time, success bool) {
	g.metrics.IncrementDatabaseQueries(op, success)
	g.metrics.RecordDatabaseQueryDuration(op, time.Since(start))
}

func (g *GroupRepository) Create(ctx context.Context, group *model.Group) (*model.Group, error) {
	start := time.Now()
	g.log.Debug("Creating group", slog.String("slug", group.Slug))

	args := pgx.NamedArgs{
		"title":       group.Title,
		"slug":        group.Slug,
		"description": group.Description,
	}
	query := `
		INSERT INTO groups (title, slug, description)
		VALUES (@title, @slug, @description)
		RETURNING id, title, slug, description`

	var created model.Group
	err := g.db.QueryRow(ctx, query, args).Scan(&created.ID, &created.Title, &created.Slug, &created.Description)
	if err != nil {
		g.record("group_create", start, false)
		if code, _, ok := db.ConstraintName(err); ok && code == db.CodeUniqueViolation {
			g.log.Debug("Group slug already exists", slog.String("slug", group.Slug))
			return nil, custom_errors.ErrSlugTaken
		}
		g.log.Error("Error creating group", slog.String("slug", group.Slug), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	g.record("group_create", start, true)
	g.log.Info("Group created", slog.Int64("id", created.ID), slog.String("slug", created.Slug))
	return &created, nil
}

func (g *GroupRepository) GetByID(ctx context.Context, id int64) (*model.Group, error) {
	return g.getOne(ctx, "group_get_by_id", `SELECT id, title, slug, description FROM groups WHERE id = @id`,
		pgx.NamedArgs{"id": id})
}

func (g *GroupRepository) GetBySlug(ctx context.Context, slug string) (*model.Group, error) {
	return g.getOne(ctx, "group_get_by_slug", `SELECT id, title, slug, description FROM groups WHERE slug = @slug`,
		pgx.NamedArgs{"slug": slug})
}

func (g *GroupRepository) getOne(ctx context.Context, op, query string, args pgx.NamedArgs) (*model.Group, error) {
	start := time.Now()
	var group model.Group
	err := g.db.QueryRow(ctx, query, args).Scan(&group.ID, &group.Title, &group.Slug, &group.Description)
	if err != nil {
		g.record(op, start, false)
		if errors.Is(err, pgx.ErrNoRows) {
			g.log.Debug("Group not found", slog.Any("args", args))
			return nil, custom_errors.ErrGroupNotFound
		}
		g.log.Error("Error getting group", slog.Any("args", args), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	g.record(op, start, true)
	return &group, nil
}

func (g *GroupRepository) List(ctx context.Context) ([]*model.Group, error) {
	start := time.Now()
	rows, err := g.db.Query(ctx, `SELECT id, title, slug, description FROM groups ORDER BY title, id`)
	if err != nil {
		g.record("group_list", start, false)
		g.log.Error("Error listing groups", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	groups := []*model.Group{}
	for rows.Next() {
		var group model.Group
		if err := rows.Scan(&group.ID, &group.Title, &group.Slug, &group.Description); err != nil {
			g.record("group_list", start, false)
			g.log.Error("Error scanning group", slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		g.record("group_list", start, false)
		g.log.Error("Error iterating groups", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	g.record("group_list", start, true)
	return groups, nil
}

func (g *GroupRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	result, err := g.db.Exec(ctx, `DELETE FROM groups WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		g.record("group_delete", start, false)
		g.log.Error("Error deleting group", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if result.RowsAffected() == 0 {
		g.record("group_delete", start, false)
		return custom_errors.ErrGroupNotFound
	}
	g.record("group_delete", start, true)
	g.log.Info("Group deleted", slog.Int64("id", id))
	return nil
}
