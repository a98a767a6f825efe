package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/internal/testutil"
)

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
	users  service.UserService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	pc := cache.NewMemory()
	users := service.NewUserService(userRepo, "test-secret", time.Hour)
	relations := service.NewRelationshipService(followRepo, userRepo, true)
	h := handler.NewHandler(handler.Services{
		Feed:      service.NewFeedService(postRepo, groupRepo, userRepo, relations, pc, 20*time.Second, 10),
		Posts:     service.NewPostService(postRepo, groupRepo, commentRepo),
		Groups:    service.NewGroupService(groupRepo),
		Comments:  service.NewCommentService(commentRepo, postRepo),
		Users:     users,
		Relations: relations,
		PageCache: pc,
	})
	return &testApp{
		db:     db,
		router: NewRouter(h, users, Options{ServiceName: "yatube-test"}),
		users:  users,
	}
}

// signup registers a user and returns it with a bearer token.
func (a *testApp) signup(t *testing.T, username string) (*model.User, string) {
	t.Helper()
	ctx := context.Background()
	u, err := a.users.Signup(ctx, service.SignupInput{Username: username, Password: "password-" + username})
	require.NoError(t, err)
	token, _, err := a.users.Login(ctx, username, "password-"+username)
	require.NoError(t, err)
	return u, token
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// staff registers a staff user and returns a token carrying the staff claim.
func (a *testApp) staff(t *testing.T, username string) string {
	t.Helper()
	u, _ := a.signup(t, username)
	require.NoError(t, a.db.Model(u).Update("is_staff", true).Error)
	token, _, err := a.users.Login(context.Background(), username, "password-"+username)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestIndex_StaleUntilInvalidated(t *testing.T) {
	app := newTestApp(t)
	author, token := app.signup(t, "leo")
	staffToken := app.staff(t, "admin")

	victim := testutil.CreatePost(t, app.db, author, "soon gone", nil, time.Time{})
	testutil.CreatePost(t, app.db, author, "stays", nil, time.Now().Add(-time.Minute))

	first := app.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	c1 := first.Body.String()
	var feed handler.FeedView
	decode(t, first, &feed)
	require.Len(t, feed.Posts, 2)
	assert.Equal(t, "leo", feed.Posts[0].Author)

	del := app.do(t, http.MethodPost, fmt.Sprintf("/posts/%d/delete/", victim.ID), token, nil)
	require.Equal(t, http.StatusOK, del.Code)

	second := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, c1, second.Body.String())

	// 页码不影响缓存 key
	assert.Equal(t, c1, app.do(t, http.MethodGet, "/?page=3", "", nil).Body.String())

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, "/admin/cache/invalidate", token, nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/admin/cache/invalidate", staffToken, nil).Code)

	third := app.do(t, http.MethodGet, "/", "", nil)
	assert.NotEqual(t, c1, third.Body.String())
	decode(t, third, &feed)
	assert.Len(t, feed.Posts, 1)
}

func TestGroupFeed(t *testing.T) {
	app := newTestApp(t)
	author, _ := app.signup(t, "leo")
	cats := testutil.CreateGroup(t, app.db, "cats")
	testutil.CreatePost(t, app.db, author, "meow", cats, time.Time{})
	testutil.CreatePost(t, app.db, author, "elsewhere", nil, time.Time{})

	w := app.do(t, http.MethodGet, "/group/cats/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Group handler.GroupRef `json:"group"`
		Feed  handler.FeedView `json:"feed"`
	}
	decode(t, w, &view)
	assert.Equal(t, "cats", view.Group.Slug)
	require.Len(t, view.Feed.Posts, 1)
	assert.Equal(t, "meow", view.Feed.Posts[0].Text)
	require.NotNil(t, view.Feed.Posts[0].Group)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/group/nope/", "", nil).Code)
}

func TestProfile_PaginationAndFollowing(t *testing.T) {
	app := newTestApp(t)
	author, _ := app.signup(t, "leo")
	_, readerToken := app.signup(t, "mia")
	for i := 0; i < 11; i++ {
		testutil.CreatePost(t, app.db, author, fmt.Sprintf("post %d", i), nil, time.Now().Add(time.Duration(i)*time.Second))
	}

	var view struct {
		Author    handler.UserView `json:"author"`
		PostCount int64            `json:"post_count"`
		Following bool             `json:"following"`
		Feed      handler.FeedView `json:"feed"`
	}
	w := app.do(t, http.MethodGet, "/profile/leo/", readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.EqualValues(t, 11, view.PostCount)
	assert.Len(t, view.Feed.Posts, 10)
	assert.False(t, view.Following)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/profile/leo/follow/", readerToken, nil).Code)

	w = app.do(t, http.MethodGet, "/profile/leo/?page=2", readerToken, nil)
	decode(t, w, &view)
	assert.Len(t, view.Feed.Posts, 1)
	assert.True(t, view.Following)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/profile/ghost/", "", nil).Code)
}

func TestFollowFeed(t *testing.T) {
	app := newTestApp(t)
	author, authorToken := app.signup(t, "leo")
	_, readerToken := app.signup(t, "mia")
	testutil.CreateUser(t, app.db, "stranger")

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/follow/", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/follow/", "bad-token", nil).Code)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/profile/leo/follow/", readerToken, nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/profile/leo/follow/", readerToken, nil).Code)

	created := app.do(t, http.MethodPost, "/create/", authorToken, gin.H{"text": "for my followers"})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var feed handler.FeedView
	decode(t, app.do(t, http.MethodGet, "/follow/", readerToken, nil), &feed)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, author.ID, feed.Posts[0].AuthorID)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/profile/leo/unfollow/", readerToken, nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/profile/leo/unfollow/", readerToken, nil).Code)

	decode(t, app.do(t, http.MethodGet, "/follow/", readerToken, nil), &feed)
	assert.Empty(t, feed.Posts)

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodPost, "/profile/ghost/follow/", readerToken, nil).Code)

	var followers struct {
		List []string `json:"list"`
	}
	decode(t, app.do(t, http.MethodGet, "/profile/leo/followers/", "", nil), &followers)
	assert.Empty(t, followers.List)
}

func TestPostLifecycle(t *testing.T) {
	app := newTestApp(t)
	_, authorToken := app.signup(t, "leo")
	_, otherToken := app.signup(t, "mia")

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/create/", "", gin.H{"text": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/create/", authorToken, gin.H{"text": ""}).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/create/", authorToken, gin.H{"text": "x", "group_id": 42}).Code)

	w := app.do(t, http.MethodPost, "/create/", authorToken, gin.H{"text": "first draft"})
	require.Equal(t, http.StatusCreated, w.Code)
	var post handler.PostView
	decode(t, w, &post)
	assert.Equal(t, "leo", post.Author)

	base := fmt.Sprintf("/posts/%d/", post.ID)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, base+"edit/", otherToken, gin.H{"text": "hijack"}).Code)

	w = app.do(t, http.MethodPost, base+"edit/", authorToken, gin.H{"text": "edited"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &post)
	assert.Equal(t, "edited", post.Text)

	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, base+"comment/", otherToken, gin.H{"text": "nice"}).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, base+"comment/", otherToken, gin.H{}).Code)

	var detail struct {
		Post        handler.PostView      `json:"post"`
		Comments    []handler.CommentView `json:"comments"`
		AuthorPosts int64                 `json:"author_posts"`
	}
	decode(t, app.do(t, http.MethodGet, base, "", nil), &detail)
	assert.Equal(t, "edited", detail.Post.Text)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "mia", detail.Comments[0].Author)
	assert.EqualValues(t, 1, detail.AuthorPosts)

	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, base+"delete/", otherToken, nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, base+"delete/", authorToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, base, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/posts/abc/", "", nil).Code)
}

func TestGroupsAndAuth(t *testing.T) {
	app := newTestApp(t)
	_, token := app.signup(t, "leo")

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/groups/", token, gin.H{"title": "Bad", "slug": "has space"}).Code)
	require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/groups/", token, gin.H{"title": "Cats", "slug": "cats"}).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/groups/", token, gin.H{"title": "Cats 2", "slug": "cats"}).Code)

	var groups []model.Group
	decode(t, app.do(t, http.MethodGet, "/groups/", "", nil), &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "cats", groups[0].Slug)

	w := app.do(t, http.MethodPost, "/auth/signup/", "", gin.H{"username": "kim", "email": "kim@example.com", "password": "long-enough"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPost, "/auth/signup/", "", gin.H{"username": "kim", "password": "long-enough"}).Code)

	var login struct {
		Token string `json:"token"`
	}
	w = app.do(t, http.MethodPost, "/auth/login/", "", gin.H{"username": "kim", "password": "long-enough"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &login)
	assert.NotEmpty(t, login.Token)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/auth/login/", "", gin.H{"username": "kim", "password": "wrong-pass"}).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/healthz", "", nil).Code)
	app.do(t, http.MethodGet, "/", "", nil)

	w := app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "page_cache_requests_total")
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
