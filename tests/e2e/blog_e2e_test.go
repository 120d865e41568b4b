package e2e

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/router"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "e2e-password"

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(t *testing.T, handler http.Handler) *localClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &localClient{handler: handler, jar: jar}
}

// Do 在进程内执行请求并维护 cookie，不自动跟随重定向
func (c *localClient) Do(req *http.Request) *http.Response {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp
}

func (c *localClient) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return c.read(t, c.Do(httptest.NewRequest(http.MethodGet, "http://blogicum.test"+path, nil)))
}

func (c *localClient) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "http://blogicum.test"+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.read(t, c.Do(req))
}

func (c *localClient) read(t *testing.T, resp *http.Response) (*http.Response, string) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func (c *localClient) login(t *testing.T, username string) {
	t.Helper()
	resp, _ := c.post(t, "/auth/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, resp.StatusCode, "login %s", username)
}

type e2eSuite struct {
	db       *gorm.DB
	handler  http.Handler
	category db.Category
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano()), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	category, err := service.NewCategoryService(gdb).Create(context.Background(), service.CategoryInput{
		Title: "Travel", Slug: "travel", IsPublished: true,
	})
	require.NoError(t, err)

	users := service.NewUserService(gdb)
	for _, username := range []string{"author", "stranger"} {
		_, err := users.Register(context.Background(), username, testPassword)
		require.NoError(t, err)
	}

	r, err := router.SetupRouter(gdb, config.AppConfig{
		SessionSecret: "e2e-secret",
		UploadDir:     t.TempDir(),
		UploadURLPath: "/media",
		PaginateBy:    10,
	}, nil)
	require.NoError(t, err)

	return &e2eSuite{db: gdb, handler: r, category: *category}
}

func TestE2E_BlogScenario(t *testing.T) {
	suite := newE2ESuite(t)

	author := newLocalClient(t, suite.handler)
	stranger := newLocalClient(t, suite.handler)
	anonymous := newLocalClient(t, suite.handler)

	author.login(t, "author")
	stranger.login(t, "stranger")

	// 作者发布一篇已过发布时间的文章
	resp, _ := author.post(t, "/posts/create/", url.Values{
		"title":        {"A walk in the park"},
		"text":         {"It was *sunny*."},
		"pub_date":     {time.Now().Add(-2 * time.Hour).UTC().Format("2006-01-02T15:04")},
		"category":     {fmt.Sprint(suite.category.ID)},
		"is_published": {"on"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/author/", resp.Header.Get("Location"))

	var post db.Post
	require.NoError(t, suite.db.Where("title = ?", "A walk in the park").First(&post).Error)
	detailPath := fmt.Sprintf("/posts/%d/", post.ID)

	t.Run("visible on index", func(t *testing.T) {
		resp, body := anonymous.get(t, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "A walk in the park")
		assert.Contains(t, body, detailPath)
	})

	t.Run("anonymous can read but not edit", func(t *testing.T) {
		resp, body := anonymous.get(t, detailPath)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "<em>sunny</em>")

		resp, _ = anonymous.get(t, detailPath+"edit/")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/auth/login/"))
	})

	t.Run("stranger is bounced back to the post", func(t *testing.T) {
		resp, _ := stranger.get(t, detailPath+"edit/")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, detailPath, resp.Header.Get("Location"))
	})

	var comment db.Comment
	t.Run("stranger comments", func(t *testing.T) {
		resp, _ := stranger.post(t, detailPath+"comment/", url.Values{"text": {"Lovely!"}})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.NoError(t, suite.db.Where("post_id = ?", post.ID).First(&comment).Error)

		_, body := anonymous.get(t, "/")
		assert.Contains(t, body, "Comments: 1")
	})

	t.Run("comment delete needs confirmation", func(t *testing.T) {
		deletePath := fmt.Sprintf("%sdelete_comment/%d/", detailPath, comment.ID)

		resp, _ := author.post(t, deletePath, url.Values{})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, detailPath, resp.Header.Get("Location"))
		require.NoError(t, suite.db.First(&db.Comment{}, comment.ID).Error, "only the comment author may delete it")

		resp, body := stranger.get(t, deletePath)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Lovely!")
		require.NoError(t, suite.db.First(&db.Comment{}, comment.ID).Error)

		resp, _ = stranger.post(t, deletePath, url.Values{})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, detailPath, resp.Header.Get("Location"))
		assert.Error(t, suite.db.First(&db.Comment{}, comment.ID).Error)
	})

	t.Run("author hides then deletes the post", func(t *testing.T) {
		resp, _ := author.post(t, detailPath+"edit/", url.Values{
			"title":    {"A walk in the park"},
			"text":     {"It was *sunny*."},
			"pub_date": {time.Now().Add(-2 * time.Hour).UTC().Format("2006-01-02T15:04")},
			"category": {fmt.Sprint(suite.category.ID)},
		})
		require.Equal(t, http.StatusFound, resp.StatusCode)

		resp, _ = anonymous.get(t, detailPath)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp, _ = author.get(t, detailPath)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = author.post(t, detailPath+"delete/", url.Values{})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		resp, _ = author.get(t, detailPath)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
