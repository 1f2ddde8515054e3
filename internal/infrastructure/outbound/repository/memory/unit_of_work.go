package memory

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	ports "yatube/internal/domain/ports/output"
	comment_repository "yatube/internal/domain/ports/output/comment"
	follow_repository "yatube/internal/domain/ports/output/follow"
	group_repository "yatube/internal/domain/ports/output/group"
	post_repository "yatube/internal/domain/ports/output/post"
	user_repository "yatube/internal/domain/ports/output/user"
)

type UnitOfWork struct {
	store *Store
	log   ports.Logger
}

func NewUnitOfWork(store *Store, log ports.Logger) ports.UnitOfWork {
	return &UnitOfWork{store: store, log: log}
}

// Begin waits for the open transaction, if any, to finish. It gives up with
// the context error when ctx is done first.
func (u *UnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	select {
	case u.store.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	u.store.mu.RLock()
	work := u.store.data.clone()
	u.store.mu.RUnlock()

	return &Transaction{store: u.store, data: work, log: u.log}, nil
}

// Transaction works on a private copy of the tables that replaces the shared
// ones on Commit.
type Transaction struct {
	store  *Store
	mu     sync.Mutex
	data   *tables
	log    ports.Logger
	closed bool
}

func (t *Transaction) read(fn func(t *tables) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.data)
}

func (t *Transaction) write(fn func(t *tables) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	work := t.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	t.data = work
	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true

	t.store.mu.Lock()
	t.store.data = t.data
	t.store.mu.Unlock()
	<-t.store.writer
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	<-t.store.writer
	return nil
}

func (t *Transaction) PostRepository() post_repository.Repository {
	return &PostRepository{src: t, store: t.store, log: t.log}
}

func (t *Transaction) GroupRepository() group_repository.Repository {
	return &GroupRepository{src: t, log: t.log}
}

func (t *Transaction) CommentRepository() comment_repository.Repository {
	return &CommentRepository{src: t, store: t.store, log: t.log}
}

func (t *Transaction) FollowRepository() follow_repository.Repository {
	return &FollowRepository{src: t, log: t.log}
}

func (t *Transaction) UserRepository() user_repository.Repository {
	return &UserRepository{src: t, store: t.store, log: t.log}
}
