package memory

import (
	"context"
	"log/slog"
	"sort"

	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	ports "yatube/internal/domain/ports/output"
)

type PostRepository struct {
	src   source
	store *Store
	log   ports.Logger
}

func NewPostRepository(store *Store, log ports.Logger) *PostRepository {
	return &PostRepository{src: store, store: store, log: log}
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	var created *model.Post
	err := p.src.write(func(t *tables) error {
		if _, ok := t.users[post.AuthorID]; !ok {
			return custom_errors.ErrForeignKey
		}
		if post.GroupID != nil {
			if _, ok := t.groups[*post.GroupID]; !ok {
				return custom_errors.ErrForeignKey
			}
		}
		newPost := copyPost(post)
		newPost.ID = t.nextPostID
		newPost.CreatedAt = p.store.timestamp()
		t.nextPostID++
		t.posts[newPost.ID] = newPost
		created = copyPost(newPost)
		return nil
	})
	if err != nil {
		p.log.Debug("Failed to create post", slog.Int64("author_id", post.AuthorID), slog.String("error", err.Error()))
		return nil, err
	}
	return created, nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.PostDetailed, error) {
	var result *model.PostDetailed
	err := p.src.read(func(t *tables) error {
		post, ok := t.posts[id]
		if !ok {
			return custom_errors.ErrPostNotFound
		}
		result = t.detailed(post)
		return nil
	})
	if err != nil {
		p.log.Debug("Post not found by id", slog.Int64("id", id))
		return nil, err
	}
	return result, nil
}

func (p *PostRepository) Update(ctx context.Context, post *model.Post) (*model.Post, error) {
	var updated *model.Post
	err := p.src.write(func(t *tables) error {
		existing, ok := t.posts[post.ID]
		if !ok {
			return custom_errors.ErrPostNotFound
		}
		if post.GroupID != nil {
			if _, ok := t.groups[*post.GroupID]; !ok {
				return custom_errors.ErrForeignKey
			}
		}
		next := copyPost(post)
		existing.Text = next.Text
		existing.GroupID = next.GroupID
		existing.Image = next.Image
		updated = copyPost(existing)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	return p.src.write(func(t *tables) error {
		if _, ok := t.posts[id]; !ok {
			return custom_errors.ErrPostNotFound
		}
		t.deletePost(id)
		return nil
	})
}

func (p *PostRepository) Count(ctx context.Context, scope model.FeedScope) (int, error) {
	if err := scope.IsValid(); err != nil {
		return 0, custom_errors.ErrInvalidInput
	}
	var total int
	err := p.src.read(func(t *tables) error {
		total = len(t.match(scope))
		return nil
	})
	return total, err
}

func (p *PostRepository) List(ctx context.Context, scope model.FeedScope, limit, offset int) ([]*model.PostDetailed, error) {
	if err := scope.IsValid(); err != nil || offset < 0 {
		return nil, custom_errors.ErrInvalidInput
	}
	result := []*model.PostDetailed{}
	err := p.src.read(func(t *tables) error {
		posts := t.match(scope)
		if offset >= len(posts) {
			return nil
		}
		posts = posts[offset:]
		if limit >= 0 && limit < len(posts) {
			posts = posts[:limit]
		}
		for _, post := range posts {
			result = append(result, t.detailed(post))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.log.Debug("Listed posts", slog.String("scope", string(scope.Kind)), slog.Int("count", len(result)))
	return result, nil
}

// match returns the posts of scope ordered newest first, ties by id.
func (t *tables) match(scope model.FeedScope) []*model.Post {
	var followed map[int64]bool
	if scope.Kind == model.ScopeFollows {
		followed = make(map[int64]bool)
		for _, f := range t.follows {
			if f.UserID == scope.FollowerID {
				followed[f.AuthorID] = true
			}
		}
	}

	posts := make([]*model.Post, 0, len(t.posts))
	for _, post := range t.posts {
		switch scope.Kind {
		case model.ScopeGroup:
			if post.GroupID == nil || *post.GroupID != scope.GroupID {
				continue
			}
		case model.ScopeAuthor:
			if post.AuthorID != scope.AuthorID {
				continue
			}
		case model.ScopeFollows:
			if !followed[post.AuthorID] {
				continue
			}
		}
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool {
		ti, tj := posts[i].CreatedAt.Time, posts[j].CreatedAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts
}
