package http_server_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/application/pagecache"
	feed_service "yatube/internal/application/service/feed"
	follow_service "yatube/internal/application/service/follow"
	group_service "yatube/internal/application/service/group"
	post_service "yatube/internal/application/service/post"
	user_service "yatube/internal/application/service/user"
	model "yatube/internal/domain/models"
	http_server "yatube/internal/infrastructure/inbound/http"
	"yatube/internal/infrastructure/inbound/http/web"
	"yatube/internal/infrastructure/logger"
	"yatube/internal/infrastructure/outbound/auth/jwt"
	memory_cache "yatube/internal/infrastructure/outbound/cache/memory"
	prometheus_metrics "yatube/internal/infrastructure/outbound/metrics/prometheus"
	"yatube/internal/infrastructure/outbound/repository/memory"
	"yatube/internal/infrastructure/outbound/storage/local"
)

const cookieName = "session"

type app struct {
	handler http.Handler
	index   *pagecache.Memoizer
	users   *user_service.UserService
	content *post_service.PostService
	groups  *memory.GroupRepository
	posts   *memory.PostRepository
	follows *memory.FollowRepository
}

func newApp(t *testing.T) *app {
	t.Helper()
	log := logger.New("test")
	metrics := prometheus_metrics.NewPrometheusMetricsProvider()

	store := memory.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	userRepo := memory.NewUserRepository(store, log)
	groupRepo := memory.NewGroupRepository(store, log)
	postRepo := memory.NewPostRepository(store, log)
	commentRepo := memory.NewCommentRepository(store, log)
	followRepo := memory.NewFollowRepository(store, log)
	uow := memory.NewUnitOfWork(store, log)

	const maxUpload = 1 << 20
	images := local.NewImageStorage(t.TempDir(), maxUpload, log)
	tokens := jwt.NewTokenManager("test-secret", time.Hour)

	posts := post_service.NewPostService(postRepo, commentRepo, images, uow, log, metrics)
	follows := follow_service.NewFollowService(followRepo, uow, log, metrics)
	feeds := feed_service.NewFeedService(postRepo, groupRepo, userRepo, follows, 10, log)
	groups := group_service.NewGroupService(groupRepo, log)
	users := user_service.NewUserService(userRepo, tokens, log).WithHashCost(bcrypt.MinCost)

	index := pagecache.NewMemoizer(memory_cache.NewPageCache(log), 20*time.Second, log, metrics)

	renderer, err := web.NewRenderer("/media/", log)
	require.NoError(t, err)
	validate := web.NewValidator()

	handler := http_server.NewRouter(http_server.RouterConfig{
		Handlers: http_server.Handlers{
			Feed:   web.NewFeedHandler(feeds, index, renderer),
			Post:   web.NewPostHandler(posts, groups, validate, renderer, maxUpload, log),
			Follow: web.NewFollowHandler(follows, renderer, log),
			Auth:   web.NewAuthHandler(users, validate, renderer, web.SessionCookie{Name: cookieName, TTL: time.Hour}),
		},
		Renderer:      renderer,
		Authenticator: users,
		CookieName:    cookieName,
		Log:           log,
		Metrics:       metrics,
	})

	return &app{
		handler: handler,
		index:   index,
		users:   users,
		content: posts,
		groups:  groupRepo,
		posts:   postRepo,
		follows: followRepo,
	}
}

func (a *app) user(t *testing.T, name string) (*model.User, *http.Cookie) {
	t.Helper()
	u, err := a.users.Register(context.Background(), name, "password123")
	require.NoError(t, err)
	token, err := a.users.IssueToken(u)
	require.NoError(t, err)
	return u, &http.Cookie{Name: cookieName, Value: token}
}

func (a *app) group(t *testing.T, slug string) *model.Group {
	t.Helper()
	g, err := a.groups.Create(context.Background(), &model.Group{Title: "Group " + slug, Slug: slug})
	require.NoError(t, err)
	return g
}

func (a *app) post(t *testing.T, author *model.User, groupID *int64, text string) *model.Post {
	t.Helper()
	p, err := a.posts.Create(context.Background(), &model.Post{AuthorID: author.ID, GroupID: groupID, Text: text})
	require.NoError(t, err)
	return p
}

func (a *app) get(t *testing.T, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *app) postForm(t *testing.T, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func countPosts(body string) int {
	return strings.Count(body, `<article class="post">`)
}

func TestIndex_CacheFreshness(t *testing.T) {
	a := newApp(t)
	author, _ := a.user(t, "leo")
	x := a.post(t, author, nil, "cached post body")

	rec := a.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cached post body")

	require.NoError(t, a.content.DeletePost(context.Background(), x.ID))

	rec = a.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cached post body", "index is served from cache inside the window")

	require.NoError(t, a.index.Clear(context.Background()))

	rec = a.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "cached post body")
}

func TestIndex_CacheKeepsNavigationPerUser(t *testing.T) {
	a := newApp(t)
	author, cookie := a.user(t, "leo")
	a.post(t, author, nil, "hello")

	guest := a.get(t, "/", nil)
	require.Equal(t, http.StatusOK, guest.Code)
	assert.Contains(t, guest.Body.String(), "Log in")

	signedIn := a.get(t, "/", cookie)
	require.Equal(t, http.StatusOK, signedIn.Code)
	assert.Contains(t, signedIn.Body.String(), "/profile/leo/")
	assert.NotContains(t, signedIn.Body.String(), `href="/auth/login/"`)
}

func TestIndex_PagesAreCachedSeparately(t *testing.T) {
	a := newApp(t)
	author, _ := a.user(t, "leo")
	for i := 0; i < 11; i++ {
		a.post(t, author, nil, fmt.Sprintf("post %d", i))
	}

	assert.Equal(t, 10, countPosts(a.get(t, "/", nil).Body.String()))
	assert.Equal(t, 1, countPosts(a.get(t, "/?page=2", nil).Body.String()))
}

func TestGroupPagination(t *testing.T) {
	a := newApp(t)
	author, _ := a.user(t, "leo")
	g := a.group(t, "test_slug")
	for i := 0; i < 13; i++ {
		a.post(t, author, &g.ID, fmt.Sprintf("post %d", i))
	}

	tests := []struct {
		target string
		want   int
	}{
		{target: "/group/test_slug/", want: 10},
		{target: "/group/test_slug/?page=2", want: 3},
		{target: "/group/test_slug/?page=3", want: 0},
		{target: "/group/test_slug/?page=abc", want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := a.get(t, tt.target, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, countPosts(rec.Body.String()))
		})
	}
}

func TestHugePageNumberRendersEmptyPage(t *testing.T) {
	a := newApp(t)
	author, _ := a.user(t, "leo")
	reader, cookie := a.user(t, "reader")
	g := a.group(t, "test_slug")
	for i := 0; i < 13; i++ {
		a.post(t, author, &g.ID, fmt.Sprintf("post %d", i))
	}
	_, err := a.follows.Create(context.Background(), reader.ID, author.ID)
	require.NoError(t, err)

	const huge = "?page=9223372036854775807"
	for _, target := range []string{"/" + huge, "/group/test_slug/" + huge, "/profile/leo/" + huge, "/follow/" + huge} {
		t.Run(target, func(t *testing.T) {
			rec := a.get(t, target, cookie)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 0, countPosts(rec.Body.String()))
			assert.Contains(t, rec.Body.String(), "No posts yet.")
		})
	}
}

func TestGuestRedirectsToLogin(t *testing.T) {
	a := newApp(t)
	author, _ := a.user(t, "leo")
	p := a.post(t, author, nil, "text")

	targets := []string{
		"/create/",
		"/follow/",
		fmt.Sprintf("/posts/%d/edit/", p.ID),
		fmt.Sprintf("/posts/%d/comment/", p.ID),
		"/profile/leo/follow/",
		"/profile/leo/unfollow/",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			rec := a.get(t, target, nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(target), rec.Header().Get("Location"))
		})
	}
}

func TestNotFoundPages(t *testing.T) {
	a := newApp(t)

	for _, target := range []string{"/group/missing/", "/profile/nobody/", "/posts/999/", "/no/such/page/"} {
		t.Run(target, func(t *testing.T) {
			rec := a.get(t, target, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "Page not found")
		})
	}
}

func TestCreatePost(t *testing.T) {
	a := newApp(t)
	_, cookie := a.user(t, "leo")
	g := a.group(t, "cats")

	rec := a.postForm(t, "/create/", url.Values{"text": {"  new post  "}, "group": {fmt.Sprint(g.ID)}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

	body := a.get(t, "/group/cats/", nil).Body.String()
	assert.Contains(t, body, "new post")
	assert.Equal(t, 1, countPosts(body))
}

func TestCreatePost_InvalidFormIsRerendered(t *testing.T) {
	a := newApp(t)
	_, cookie := a.user(t, "leo")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{name: "empty text", form: url.Values{"text": {"   "}}, want: "This field is required."},
		{name: "unknown group", form: url.Values{"text": {"hi"}, "group": {"42"}}, want: "Select a valid choice."},
		{name: "malformed group", form: url.Values{"text": {"hi"}, "group": {"cats"}}, want: "Select a valid choice."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.postForm(t, "/create/", tt.form, cookie)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	count, err := a.posts.Count(context.Background(), model.AllPosts())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEditPost(t *testing.T) {
	a := newApp(t)
	author, authorCookie := a.user(t, "leo")
	_, otherCookie := a.user(t, "max")
	p := a.post(t, author, nil, "original")
	editPath := fmt.Sprintf("/posts/%d/edit/", p.ID)
	detail := fmt.Sprintf("/posts/%d/", p.ID)

	rec := a.get(t, editPath, otherCookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detail, rec.Header().Get("Location"))

	rec = a.postForm(t, editPath, url.Values{"text": {"hijacked"}}, otherCookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detail, rec.Header().Get("Location"))

	got, err := a.posts.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Post.Text)

	rec = a.get(t, editPath, authorCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "original")

	rec = a.postForm(t, editPath, url.Values{"text": {"edited"}}, authorCookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detail, rec.Header().Get("Location"))

	got, err = a.posts.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Post.Text)
}

func TestComment(t *testing.T) {
	a := newApp(t)
	author, cookie := a.user(t, "leo")
	p := a.post(t, author, nil, "text")
	detail := fmt.Sprintf("/posts/%d/", p.ID)

	rec := a.postForm(t, detail+"comment/", url.Values{"text": {"nice post"}}, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detail, rec.Header().Get("Location"))

	rec = a.get(t, detail+"comment/", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detail, rec.Header().Get("Location"))

	body := a.get(t, detail, nil).Body.String()
	assert.Contains(t, body, "nice post")
}

func TestFollowFlow(t *testing.T) {
	a := newApp(t)
	author, authorCookie := a.user(t, "author")
	follower, followerCookie := a.user(t, "follower")
	_, strangerCookie := a.user(t, "stranger")
	a.post(t, author, nil, "followed content")

	rec := a.postForm(t, "/profile/author/follow/", nil, followerCookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/author/", rec.Header().Get("Location"))

	rec = a.postForm(t, "/profile/author/follow/", nil, followerCookie)
	assert.Equal(t, http.StatusFound, rec.Code, "duplicate follow lands on the profile")

	rec = a.postForm(t, "/profile/author/follow/", nil, authorCookie)
	assert.Equal(t, http.StatusFound, rec.Code, "self-follow lands on the profile")

	following, err := a.follows.Exists(context.Background(), follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)
	following, err = a.follows.Exists(context.Background(), author.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, following)

	assert.Contains(t, a.get(t, "/follow/", followerCookie).Body.String(), "followed content")
	assert.NotContains(t, a.get(t, "/follow/", strangerCookie).Body.String(), "followed content")

	rec = a.postForm(t, "/profile/author/unfollow/", nil, followerCookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	rec = a.postForm(t, "/profile/author/unfollow/", nil, followerCookie)
	assert.Equal(t, http.StatusFound, rec.Code, "unfollowing twice is a no-op")

	assert.NotContains(t, a.get(t, "/follow/", followerCookie).Body.String(), "followed content")

	rec = a.postForm(t, "/profile/nobody/follow/", nil, followerCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileShowsFollowButton(t *testing.T) {
	a := newApp(t)
	a.user(t, "author")
	_, cookie := a.user(t, "follower")

	assert.Contains(t, a.get(t, "/profile/author/", cookie).Body.String(), "/profile/author/follow/")

	a.postForm(t, "/profile/author/follow/", nil, cookie)
	assert.Contains(t, a.get(t, "/profile/author/", cookie).Body.String(), "/profile/author/unfollow/")
}

func TestSignupLoginLogout(t *testing.T) {
	a := newApp(t)

	rec := a.postForm(t, "/auth/signup/", url.Values{"username": {"leo"}, "password": {"password123"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.NotEmpty(t, sessionCookie(rec))

	rec = a.postForm(t, "/auth/signup/", url.Values{"username": {"leo"}, "password": {"password123"}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	rec = a.postForm(t, "/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong-password"}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "correct username and password")

	rec = a.postForm(t, "/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"password123"},
		"next":     {"/follow/"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/follow/", rec.Header().Get("Location"))
	token := sessionCookie(rec)
	require.NotEmpty(t, token)

	rec = a.get(t, "/follow/", &http.Cookie{Name: cookieName, Value: token})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.postForm(t, "/auth/logout/", nil, &http.Cookie{Name: cookieName, Value: token})
	assert.Equal(t, http.StatusFound, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			assert.Negative(t, c.MaxAge)
		}
	}
}

func TestLogin_RejectsOffsiteNext(t *testing.T) {
	a := newApp(t)
	a.user(t, "leo")

	for _, next := range []string{"https://evil.example/", "//evil.example/", `/\evil.example`} {
		rec := a.postForm(t, "/auth/login/", url.Values{
			"username": {"leo"},
			"password": {"password123"},
			"next":     {next},
		}, nil)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"), next)
	}
}

func TestSlashRedirect(t *testing.T) {
	a := newApp(t)
	rec := a.get(t, "/group/cats", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/group/cats/", rec.Header().Get("Location"))
}

func sessionCookie(rec *httptest.ResponseRecorder) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c.Value
		}
	}
	return ""
}
