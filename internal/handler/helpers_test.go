package handler_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/router"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

type testApp struct {
	t         *testing.T
	db        *gorm.DB
	router    *gin.Engine
	uploadDir string
	category  db.Category
	location  db.Location
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Silent)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uploadDir := t.TempDir()
	cfg := config.AppConfig{
		SessionSecret: "test-secret",
		UploadDir:     uploadDir,
		UploadURLPath: "/media",
		PaginateBy:    10,
	}

	r, err := router.SetupRouter(gdb, cfg, nil)
	require.NoError(t, err, "setup router")

	app := &testApp{t: t, db: gdb, router: r, uploadDir: uploadDir}
	app.category = db.Category{Title: "Travel", Slug: "travel", IsPublished: true}
	require.NoError(t, gdb.Create(&app.category).Error)
	app.location = db.Location{Name: "Moscow", IsPublished: true}
	require.NoError(t, gdb.Create(&app.location).Error)

	return app
}

// do 发送请求；cookies 用于携带登录会话
func (a *testApp) do(method, target string, body io.Reader, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, nil, "", cookies)
}

func (a *testApp) postForm(target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", cookies)
}

// register 创建用户并登录，返回会话 cookie
func (a *testApp) register(username string) (*db.User, []*http.Cookie) {
	a.t.Helper()
	user, err := service.NewUserService(a.db).Register(context.Background(), username, "secret-password")
	require.NoError(a.t, err)

	w := a.postForm("/auth/login/", url.Values{
		"username": {username},
		"password": {"secret-password"},
	}, nil)
	require.Equal(a.t, http.StatusFound, w.Code, "login should redirect")

	cookies := w.Result().Cookies()
	require.NotEmpty(a.t, cookies, "login should set a session cookie")
	return user, cookies
}

func (a *testApp) createPost(author *db.User, title string, pubDate time.Time, published bool) db.Post {
	a.t.Helper()
	post := db.Post{
		Title:       title,
		Text:        "Body of " + title,
		PubDate:     pubDate.UTC(),
		AuthorID:    author.ID,
		CategoryID:  &a.category.ID,
		IsPublished: published,
	}
	require.NoError(a.t, a.db.Create(&post).Error)
	return post
}

func (a *testApp) reloadPost(id uint) (db.Post, error) {
	var post db.Post
	err := a.db.First(&post, id).Error
	return post, err
}

func postPath(id uint, suffix string) string {
	return fmt.Sprintf("/posts/%d/%s", id, suffix)
}
