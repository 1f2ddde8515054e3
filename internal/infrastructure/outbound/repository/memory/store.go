// Package memory is an in-process implementation of every repository and of
// the unit of work. It enforces the same constraints as the Postgres schema
// (unique slug/username/follow pair, no self-follow, foreign keys, cascades
// and SET NULL on group deletion) and is used for tests and local runs.
package memory

import (
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	model "yatube/internal/domain/models"
)

type tables struct {
	users    map[int64]*model.User
	groups   map[int64]*model.Group
	posts    map[int64]*model.Post
	comments map[int64]*model.Comment
	follows  map[int64]*model.Follow

	nextUserID    int64
	nextGroupID   int64
	nextPostID    int64
	nextCommentID int64
	nextFollowID  int64
}

func newTables() *tables {
	return &tables{
		users:         make(map[int64]*model.User),
		groups:        make(map[int64]*model.Group),
		posts:         make(map[int64]*model.Post),
		comments:      make(map[int64]*model.Comment),
		follows:       make(map[int64]*model.Follow),
		nextUserID:    1,
		nextGroupID:   1,
		nextPostID:    1,
		nextCommentID: 1,
		nextFollowID:  1,
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		users:         make(map[int64]*model.User, len(t.users)),
		groups:        make(map[int64]*model.Group, len(t.groups)),
		posts:         make(map[int64]*model.Post, len(t.posts)),
		comments:      make(map[int64]*model.Comment, len(t.comments)),
		follows:       make(map[int64]*model.Follow, len(t.follows)),
		nextUserID:    t.nextUserID,
		nextGroupID:   t.nextGroupID,
		nextPostID:    t.nextPostID,
		nextCommentID: t.nextCommentID,
		nextFollowID:  t.nextFollowID,
	}
	for id, u := range t.users {
		c.users[id] = copyUser(u)
	}
	for id, g := range t.groups {
		c.groups[id] = copyGroup(g)
	}
	for id, p := range t.posts {
		c.posts[id] = copyPost(p)
	}
	for id, cm := range t.comments {
		c.comments[id] = copyComment(cm)
	}
	for id, f := range t.follows {
		fc := *f
		c.follows[id] = &fc
	}
	return c
}

// source gives repositories access to a set of tables, either the shared
// store or the private copy of an open transaction.
type source interface {
	read(fn func(t *tables) error) error
	write(fn func(t *tables) error) error
}

type Store struct {
	// writer is a one-slot semaphore serialising writers: an open
	// transaction holds it until Commit/Rollback, plain writes take it for
	// their duration.
	writer chan struct{}
	mu     sync.RWMutex
	data   *tables
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{writer: make(chan struct{}, 1), data: newTables(), now: time.Now}
}

// SetClock replaces the creation timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) read(fn func(t *tables) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func (s *Store) write(fn func(t *tables) error) error {
	s.writer <- struct{}{}
	defer func() { <-s.writer }()
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) timestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now(), Valid: true}
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func copyGroup(g *model.Group) *model.Group {
	c := *g
	return &c
}

func copyPost(p *model.Post) *model.Post {
	c := *p
	if p.GroupID != nil {
		id := *p.GroupID
		c.GroupID = &id
	}
	if p.Image != nil {
		img := *p.Image
		c.Image = &img
	}
	return &c
}

func copyComment(cm *model.Comment) *model.Comment {
	c := *cm
	if cm.PostID != nil {
		id := *cm.PostID
		c.PostID = &id
	}
	if cm.AuthorID != nil {
		id := *cm.AuthorID
		c.AuthorID = &id
	}
	return &c
}

// deleteUser removes a user together with everything that cascades from it.
func (t *tables) deleteUser(id int64) {
	delete(t.users, id)
	for postID, p := range t.posts {
		if p.AuthorID == id {
			t.deletePost(postID)
		}
	}
	for commentID, c := range t.comments {
		if c.AuthorID != nil && *c.AuthorID == id {
			delete(t.comments, commentID)
		}
	}
	for followID, f := range t.follows {
		if f.UserID == id || f.AuthorID == id {
			delete(t.follows, followID)
		}
	}
}

func (t *tables) deletePost(id int64) {
	delete(t.posts, id)
	for commentID, c := range t.comments {
		if c.PostID != nil && *c.PostID == id {
			delete(t.comments, commentID)
		}
	}
}

func (t *tables) deleteGroup(id int64) {
	delete(t.groups, id)
	for _, p := range t.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
}

func (t *tables) detailed(p *model.Post) *model.PostDetailed {
	d := &model.PostDetailed{Post: copyPost(p)}
	if u, ok := t.users[p.AuthorID]; ok {
		d.Author = copyUser(u)
	}
	if p.GroupID != nil {
		if g, ok := t.groups[*p.GroupID]; ok {
			d.Group = copyGroup(g)
		}
	}
	return d
}
