package follow_service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	follow_service "yatube/internal/application/service/follow"
	"yatube/internal/custom_errors"
	model "yatube/internal/domain/models"
	"yatube/internal/infrastructure/logger"
	prometheus_metrics "yatube/internal/infrastructure/outbound/metrics/prometheus"
	"yatube/internal/infrastructure/outbound/repository/memory"
)

type env struct {
	service *follow_service.FollowService
	follows *memory.FollowRepository
	user    *model.User
	author  *model.User
}

func setup(t *testing.T) *env {
	t.Helper()
	log := logger.New("test")
	store := memory.NewStore()
	users := memory.NewUserRepository(store, log)
	user, err := users.Create(context.Background(), &model.User{Username: "user"})
	require.NoError(t, err)
	author, err := users.Create(context.Background(), &model.User{Username: "author"})
	require.NoError(t, err)

	follows := memory.NewFollowRepository(store, log)
	service := follow_service.NewFollowService(follows, memory.NewUnitOfWork(store, log), log,
		prometheus_metrics.NewPrometheusMetricsProvider())
	return &env{service: service, follows: follows, user: user, author: author}
}

func TestFollowService_Follow(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(t *testing.T, e *env)
		userID   func(e *env) int64
		username string
		wantErr  error
		wantEdge bool
	}{
		{
			name:     "Success",
			userID:   func(e *env) int64 { return e.user.ID },
			username: "author",
			wantEdge: true,
		},
		{
			name: "Duplicate follow leaves one edge",
			prepare: func(t *testing.T, e *env) {
				require.NoError(t, e.service.Follow(context.Background(), e.user.ID, "author"))
			},
			userID:   func(e *env) int64 { return e.user.ID },
			username: "author",
			wantErr:  custom_errors.ErrAlreadyFollowing,
			wantEdge: true,
		},
		{
			name:     "Self follow",
			userID:   func(e *env) int64 { return e.user.ID },
			username: "user",
			wantErr:  custom_errors.ErrSelfFollow,
		},
		{
			name:     "Unknown author",
			userID:   func(e *env) int64 { return e.user.ID },
			username: "ghost",
			wantErr:  custom_errors.ErrUserNotFound,
		},
		{
			name:     "Guest",
			userID:   func(e *env) int64 { return 0 },
			username: "author",
			wantErr:  custom_errors.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			if tt.prepare != nil {
				tt.prepare(t, e)
			}

			err := e.service.Follow(context.Background(), tt.userID(e), tt.username)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			edge, err := e.follows.Exists(context.Background(), e.user.ID, e.author.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEdge, edge)
			self, err := e.follows.Exists(context.Background(), e.user.ID, e.user.ID)
			require.NoError(t, err)
			assert.False(t, self)
		})
	}
}

func TestFollowService_ConstraintCategory(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.service.Follow(ctx, e.user.ID, "user"), custom_errors.ErrConstraintViolation)
	require.NoError(t, e.service.Follow(ctx, e.user.ID, "author"))
	assert.ErrorIs(t, e.service.Follow(ctx, e.user.ID, "author"), custom_errors.ErrConstraintViolation)
}

func TestFollowService_Unfollow(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	assert.NoError(t, e.service.Unfollow(ctx, e.user.ID, "author"), "missing edge is a no-op")

	require.NoError(t, e.service.Follow(ctx, e.user.ID, "author"))
	following, err := e.service.IsFollowing(ctx, e.user.ID, e.author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, e.service.Unfollow(ctx, e.user.ID, "author"))
	following, err = e.service.IsFollowing(ctx, e.user.ID, e.author.ID)
	require.NoError(t, err)
	assert.False(t, following)

	assert.NoError(t, e.service.Unfollow(ctx, e.user.ID, "author"))
	assert.ErrorIs(t, e.service.Unfollow(ctx, e.user.ID, "ghost"), custom_errors.ErrNotFound)
	assert.ErrorIs(t, e.service.Unfollow(ctx, 0, "author"), custom_errors.ErrUnauthenticated)

	following, err = e.service.IsFollowing(ctx, 0, e.author.ID)
	require.NoError(t, err)
	assert.False(t, following)
}
