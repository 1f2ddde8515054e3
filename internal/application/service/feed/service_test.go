package feed_service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	feed_service "yatube/internal/application/service/feed"
	follow_service "yatube/internal/application/service/follow"
	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	"yatube/internal/infrastructure/logger"
	prometheus_metrics "yatube/internal/infrastructure/outbound/metrics/prometheus"
	"yatube/internal/infrastructure/outbound/repository/memory"
)

type env struct {
	service *feed_service.FeedService
	users   *memory.UserRepository
	groups  *memory.GroupRepository
	posts   *memory.PostRepository
	follows *memory.FollowRepository
}

func setup(t *testing.T) *env {
	t.Helper()
	log := logger.New("test")
	store := memory.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	e := &env{
		users:   memory.NewUserRepository(store, log),
		groups:  memory.NewGroupRepository(store, log),
		posts:   memory.NewPostRepository(store, log),
		follows: memory.NewFollowRepository(store, log),
	}
	follows := follow_service.NewFollowService(e.follows, memory.NewUnitOfWork(store, log), log,
		prometheus_metrics.NewPrometheusMetricsProvider())
	e.service = feed_service.NewFeedService(e.posts, e.groups, e.users, follows, 10, log)
	return e
}

func (e *env) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), &model.User{Username: name})
	require.NoError(t, err)
	return u
}

func (e *env) post(t *testing.T, author *model.User, groupID *int64, text string) *model.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), &model.Post{AuthorID: author.ID, GroupID: groupID, Text: text})
	require.NoError(t, err)
	return p
}

func TestFeedService_GroupPagination(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	author := e.user(t, "leo")
	group, err := e.groups.Create(ctx, &model.Group{Title: "Test group", Slug: "test_slug"})
	require.NoError(t, err)
	for i := 0; i < 13; i++ {
		e.post(t, author, &group.ID, fmt.Sprintf("post %d", i))
	}

	tests := []struct {
		name        string
		page        int
		wantLen     int
		wantNext    bool
		wantPrev    bool
		wantFirstID int64
	}{
		{name: "first page", page: 1, wantLen: 10, wantNext: true, wantFirstID: 13},
		{name: "second page holds the remainder", page: 2, wantLen: 3, wantPrev: true, wantFirstID: 3},
		{name: "past the end is empty", page: 3, wantLen: 0, wantPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotGroup, page, err := e.service.Group(ctx, "test_slug", tt.page)
			require.NoError(t, err)
			assert.Equal(t, group.ID, gotGroup.ID)
			assert.Len(t, page.Items, tt.wantLen)
			assert.Equal(t, 2, page.NumPages)
			assert.Equal(t, 13, page.TotalItems)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrev, page.HasPrevious)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirstID, page.Items[0].Post.ID)
			}
		})
	}
}

func TestFeedService_IndexPartitionIsLossless(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	author := e.user(t, "leo")
	for i := 0; i < 27; i++ {
		e.post(t, author, nil, fmt.Sprintf("post %d", i))
	}

	seen := map[int64]bool{}
	var order []int64
	for number := 1; ; number++ {
		page, err := e.service.Index(ctx, number)
		require.NoError(t, err)
		if len(page.Items) == 0 {
			break
		}
		for _, item := range page.Items {
			assert.False(t, seen[item.Post.ID], "post %d repeated", item.Post.ID)
			seen[item.Post.ID] = true
			order = append(order, item.Post.ID)
		}
	}
	assert.Len(t, seen, 27)
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i-1], order[i])
	}
}

func TestFeedService_DeletedGroup(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	author := e.user(t, "leo")
	group, err := e.groups.Create(ctx, &model.Group{Title: "Gone", Slug: "gone"})
	require.NoError(t, err)
	created := e.post(t, author, &group.ID, "orphan")

	require.NoError(t, e.groups.Delete(ctx, group.ID))

	index, err := e.service.Index(ctx, 1)
	require.NoError(t, err)
	require.Len(t, index.Items, 1)
	assert.Equal(t, created.ID, index.Items[0].Post.ID)
	assert.Nil(t, index.Items[0].Group)

	profile, feed, err := e.service.Profile(ctx, "leo", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.PostCount)
	assert.Len(t, feed.Items, 1)

	_, _, err = e.service.Group(ctx, "gone", 1)
	assert.ErrorIs(t, err, custom_errors.ErrNotFound)
}

func TestFeedService_FollowFeed(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	author := e.user(t, "author")
	follower := e.user(t, "follower")
	stranger := e.user(t, "stranger")
	created := e.post(t, author, nil, "for followers")
	_, err := e.follows.Create(ctx, follower.ID, author.ID)
	require.NoError(t, err)

	page, err := e.service.Follow(ctx, follower.ID, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].Post.ID)

	page, err = e.service.Follow(ctx, stranger.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.NumPages)

	_, err = e.service.Follow(ctx, 0, 1)
	assert.ErrorIs(t, err, custom_errors.ErrPermission)
}

func TestFeedService_Profile(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	author := e.user(t, "author")
	viewer := e.user(t, "viewer")
	e.post(t, author, nil, "one")
	e.post(t, author, nil, "two")

	profile, page, err := e.service.Profile(ctx, "author", viewer.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, author.ID, profile.Author.ID)
	assert.Equal(t, 2, profile.PostCount)
	assert.False(t, profile.Following)
	assert.Len(t, page.Items, 2)

	_, err = e.follows.Create(ctx, viewer.ID, author.ID)
	require.NoError(t, err)
	profile, _, err = e.service.Profile(ctx, "author", viewer.ID, 1)
	require.NoError(t, err)
	assert.True(t, profile.Following)

	profile, _, err = e.service.Profile(ctx, "author", 0, 1)
	require.NoError(t, err)
	assert.False(t, profile.Following, "guests never follow")

	profile, _, err = e.service.Profile(ctx, "author", author.ID, 1)
	require.NoError(t, err)
	assert.False(t, profile.Following, "own profile")

	_, _, err = e.service.Profile(ctx, "nobody", 0, 1)
	assert.ErrorIs(t, err, custom_errors.ErrUserNotFound)
}

type mockFollows struct {
	mock.Mock
}

func (m *mockFollows) Follow(ctx context.Context, userID int64, username string) error {
	return m.Called(ctx, userID, username).Error(0)
}

func (m *mockFollows) Unfollow(ctx context.Context, userID int64, username string) error {
	return m.Called(ctx, userID, username).Error(0)
}

func (m *mockFollows) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func TestFeedService_ProfileAsksFollowService(t *testing.T) {
	log := logger.New("test")
	store := memory.NewStore()
	users := memory.NewUserRepository(store, log)
	author, err := users.Create(context.Background(), &model.User{Username: "author"})
	require.NoError(t, err)

	follows := new(mockFollows)
	service := feed_service.NewFeedService(memory.NewPostRepository(store, log),
		memory.NewGroupRepository(store, log), users, follows, 10, log)

	follows.On("IsFollowing", mock.Anything, int64(42), author.ID).Return(true, nil).Once()
	profile, _, err := service.Profile(context.Background(), "author", 42, 1)
	require.NoError(t, err)
	assert.True(t, profile.Following)

	follows.On("IsFollowing", mock.Anything, int64(43), author.ID).Return(false, custom_errors.ErrDatabaseQuery).Once()
	_, _, err = service.Profile(context.Background(), "author", 43, 1)
	assert.ErrorIs(t, err, custom_errors.ErrDatabaseQuery)

	follows.AssertExpectations(t)
}
