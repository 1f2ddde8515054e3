package memory

import (
	"context"
	"sort"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
)

type CommentRepository struct {
	src   source
	store *Store
	log   ports.Logger
}

func NewCommentRepository(store *Store, log ports.Logger) *CommentRepository {
	return &CommentRepository{src: store, store: store, log: log}
}

func (c *CommentRepository) Create(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	var created *model.Comment
	err := c.src.write(func(t *tables) error {
		if comment.PostID != nil {
			if _, ok := t.posts[*comment.PostID]; !ok {
				return custom_errors.ErrForeignKey
			}
		}
		if comment.AuthorID != nil {
			if _, ok := t.users[*comment.AuthorID]; !ok {
				return custom_errors.ErrForeignKey
			}
		}
		newComment := copyComment(comment)
		newComment.ID = t.nextCommentID
		newComment.CreatedAt = c.store.timestamp()
		t.nextCommentID++
		t.comments[newComment.ID] = newComment
		created = copyComment(newComment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*model.CommentDetailed, error) {
	result := []*model.CommentDetailed{}
	err := c.src.read(func(t *tables) error {
		for _, comment := range t.comments {
			if comment.PostID == nil || *comment.PostID != postID {
				continue
			}
			d := &model.CommentDetailed{Comment: copyComment(comment)}
			if comment.AuthorID != nil {
				if u, ok := t.users[*comment.AuthorID]; ok {
					d.Author = copyUser(u)
				}
			}
			result = append(result, d)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].Comment.CreatedAt.Time, result[j].Comment.CreatedAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return result[i].Comment.ID > result[j].Comment.ID
	})
	return result, err
}
