package post_service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	post_port "yatube/internal/domain/ports/input/post"
	ports "yatube/internal/domain/ports/output"
	comment_repository "yatube/internal/domain/ports/output/comment"
	media_storage "yatube/internal/domain/ports/output/media"
	post_repository "yatube/internal/domain/ports/output/post"
)

var _ post_port.Service = (*PostService)(nil)

type PostService struct {
	postRepo    post_repository.Repository
	commentRepo comment_repository.Repository
	images      media_storage.ImageStorage
	uow         ports.UnitOfWork
	log         ports.Logger
	metrics     ports.MetricsProvider
}

func NewPostService(
	postRepo post_repository.Repository,
	commentRepo comment_repository.Repository,
	images media_storage.ImageStorage,
	uow ports.UnitOfWork,
	log ports.Logger,
	metrics ports.MetricsProvider,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		images:      images,
		uow:         uow,
		log:         log,
		metrics:     metrics,
	}
}

func (s *PostService) CreatePost(ctx context.Context, post *model.CreatePostDTO) (result *model.PostDetailed, err error) {
	defer func() { s.metrics.IncrementPostOperations("create", err == nil) }()

	if post.AuthorID <= 0 {
		return nil, custom_errors.ErrUnauthenticated
	}
	text := strings.TrimSpace(post.Text)
	if text == "" {
		return nil, custom_errors.ErrEmptyText
	}

	image, err := s.saveImage(ctx, post.Image)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && image != nil {
			s.discardImage(ctx, *image)
		}
	}()

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	var txCommitted bool
	defer func() {
		if !txCommitted {
			s.rollback(ctx, tx)
		}
	}()

	if err := checkGroup(ctx, tx, post.GroupID); err != nil {
		return nil, err
	}

	created, err := tx.PostRepository().Create(ctx, &model.Post{
		AuthorID: post.AuthorID,
		Text:     text,
		GroupID:  post.GroupID,
		Image:    image,
	})
	if err != nil {
		s.log.Error("Failed to create post", slog.Int64("author_id", post.AuthorID), slog.String("error", err.Error()))
		return nil, err
	}

	result, err = tx.PostRepository().GetByID(ctx, created.ID)
	if err != nil {
		s.log.Error("Failed to load created post", slog.Int64("id", created.ID), slog.String("error", err.Error()))
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	txCommitted = true

	s.log.Info("Post created", slog.Int64("id", created.ID), slog.Int64("author_id", created.AuthorID))
	return result, nil
}

func (s *PostService) GetPost(ctx context.Context, id int64) (*model.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, custom_errors.ErrPostNotFound) {
			s.log.Error("Failed to get post", slog.Int64("id", id), slog.String("error", err.Error()))
		}
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		s.log.Error("Failed to list comments", slog.Int64("post_id", id), slog.String("error", err.Error()))
		return nil, err
	}

	count, err := s.postRepo.Count(ctx, model.AuthorPosts(post.Post.AuthorID))
	if err != nil {
		s.log.Error("Failed to count author posts", slog.Int64("author_id", post.Post.AuthorID), slog.String("error", err.Error()))
		return nil, err
	}

	return &model.PostView{Post: post, Comments: comments, AuthorPostCount: count}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, actorID, postID int64, update *model.UpdatePostDTO) (result *model.PostDetailed, err error) {
	defer func() { s.metrics.IncrementPostOperations("update", err == nil) }()

	if actorID <= 0 {
		return nil, custom_errors.ErrUnauthenticated
	}

	existing, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if existing.Post.AuthorID != actorID {
		s.log.Info("Rejected edit by non-author", slog.Int64("post_id", postID), slog.Int64("actor_id", actorID))
		return nil, custom_errors.ErrForbidden
	}

	text := strings.TrimSpace(update.Text)
	if text == "" {
		return nil, custom_errors.ErrEmptyText
	}

	image, err := s.saveImage(ctx, update.Image)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && image != nil {
			s.discardImage(ctx, *image)
		}
	}()

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	var txCommitted bool
	defer func() {
		if !txCommitted {
			s.rollback(ctx, tx)
		}
	}()

	if err := checkGroup(ctx, tx, update.GroupID); err != nil {
		return nil, err
	}

	current, err := tx.PostRepository().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if current.Post.AuthorID != actorID {
		return nil, custom_errors.ErrForbidden
	}

	next := *current.Post
	next.Text = text
	next.GroupID = update.GroupID
	if image != nil {
		next.Image = image
	}

	if _, err = tx.PostRepository().Update(ctx, &next); err != nil {
		s.log.Error("Failed to update post", slog.Int64("id", postID), slog.String("error", err.Error()))
		return nil, err
	}

	result, err = tx.PostRepository().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	txCommitted = true

	if image != nil && current.Post.Image != nil {
		s.discardImage(ctx, *current.Post.Image)
	}

	s.log.Info("Post updated", slog.Int64("id", postID))
	return result, nil
}

func (s *PostService) AddComment(ctx context.Context, comment *model.CreateCommentDTO) (result *model.CommentDetailed, err error) {
	defer func() { s.metrics.IncrementCommentOperations("create", err == nil) }()

	if comment.AuthorID <= 0 {
		return nil, custom_errors.ErrUnauthenticated
	}
	text := strings.TrimSpace(comment.Text)
	if text == "" {
		return nil, custom_errors.ErrEmptyText
	}

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	var txCommitted bool
	defer func() {
		if !txCommitted {
			s.rollback(ctx, tx)
		}
	}()

	if _, err = tx.PostRepository().GetByID(ctx, comment.PostID); err != nil {
		return nil, err
	}

	author, err := tx.UserRepository().GetByID(ctx, comment.AuthorID)
	if err != nil {
		if errors.Is(err, custom_errors.ErrUserNotFound) {
			return nil, custom_errors.ErrUnauthenticated
		}
		return nil, err
	}

	postID, authorID := comment.PostID, comment.AuthorID
	created, err := tx.CommentRepository().Create(ctx, &model.Comment{
		PostID:   &postID,
		AuthorID: &authorID,
		Text:     text,
	})
	if err != nil {
		s.log.Error("Failed to create comment", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	txCommitted = true

	s.log.Info("Comment created", slog.Int64("id", created.ID), slog.Int64("post_id", postID))
	return &model.CommentDetailed{Comment: created, Author: author}, nil
}

// DeletePost removes a post with its comments and drops the stored image
// once the deletion is committed.
func (s *PostService) DeletePost(ctx context.Context, postID int64) (err error) {
	defer func() { s.metrics.IncrementPostOperations("delete", err == nil) }()

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

	existing, err := tx.PostRepository().GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if err = tx.PostRepository().Delete(ctx, postID); err != nil {
		s.log.Error("Failed to delete post", slog.Int64("id", postID), slog.String("error", err.Error()))
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	txCommitted = true

	if existing.Post.Image != nil {
		s.discardImage(ctx, *existing.Post.Image)
	}

	s.log.Info("Post deleted", slog.Int64("id", postID))
	return nil
}

func checkGroup(ctx context.Context, tx ports.Transaction, groupID *int64) error {
	if groupID == nil {
		return nil
	}
	if _, err := tx.GroupRepository().GetByID(ctx, *groupID); err != nil {
		if errors.Is(err, custom_errors.ErrGroupNotFound) {
			return custom_errors.ErrInvalidGroup
		}
		return err
	}
	return nil
}

func (s *PostService) saveImage(ctx context.Context, upload *model.ImageUpload) (*string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, nil
	}
	path, err := s.images.Save(ctx, upload.Filename, upload.Data)
	if err != nil {
		s.log.Warn("Failed to store image", slog.String("filename", upload.Filename), slog.String("error", err.Error()))
		return nil, err
	}
	return &path, nil
}

func (s *PostService) discardImage(ctx context.Context, path string) {
	if err := s.images.Delete(ctx, path); err != nil {
		s.log.Warn("Failed to delete image", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (s *PostService) rollback(ctx context.Context, tx ports.Transaction) {
	if err := tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			s.log.Debug("Transaction already closed during rollback", slog.String("error", err.Error()))
			return
		}
		s.log.Error("Failed to rollback transaction", slog.String("error", err.Error()))
	}
}
