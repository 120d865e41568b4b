package handler_test

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blogicum/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPostForm(app *testApp, title string) url.Values {
	return url.Values{
		"title":        {title},
		"text":         {"Some text"},
		"pub_date":     {"2024-03-01T10:30"},
		"category":     {fmt.Sprint(app.category.ID)},
		"location":     {fmt.Sprint(app.location.ID)},
		"is_published": {"on"},
	}
}

func TestCreatePostRequiresLogin(t *testing.T) {
	app := setupTestApp(t)

	w := app.get("/posts/create/", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F", w.Header().Get("Location"))

	w = app.postForm("/posts/create/", validPostForm(app, "Anonymous"), nil)
	require.Equal(t, http.StatusFound, w.Code)

	var count int64
	require.NoError(t, app.db.Model(&db.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePostRedirectsToAuthorProfile(t *testing.T) {
	app := setupTestApp(t)
	author, cookies := app.register("alice")

	form := app.get("/posts/create/", cookies)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), "Travel")
	assert.Contains(t, form.Body.String(), "Moscow")

	w := app.postForm("/posts/create/", validPostForm(app, "Hello World"), cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	var post db.Post
	require.NoError(t, app.db.Where("title = ?", "Hello World").First(&post).Error)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.True(t, post.IsPublished)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), post.PubDate.UTC())
	require.NotNil(t, post.LocationID)
	assert.Equal(t, app.location.ID, *post.LocationID)
}

func TestCreatePostInvalidFormIsRerendered(t *testing.T) {
	app := setupTestApp(t)
	_, cookies := app.register("alice")

	tests := []struct {
		name  string
		edit  func(url.Values)
		field string
	}{
		{name: "missing title", edit: func(v url.Values) { v.Del("title") }, field: "This field is required."},
		{name: "long title", edit: func(v url.Values) { v.Set("title", strings.Repeat("x", 257)) }, field: "at most 256 characters"},
		{name: "bad date", edit: func(v url.Values) { v.Set("pub_date", "yesterday") }, field: "Enter a valid date and time."},
		{name: "unknown category", edit: func(v url.Values) { v.Set("category", "9999") }, field: "Select a valid choice."},
		{name: "missing category", edit: func(v url.Values) { v.Del("category") }, field: "This field is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validPostForm(app, "Broken")
			tt.edit(form)

			w := app.postForm("/posts/create/", form, cookies)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.field)
		})
	}

	var count int64
	require.NoError(t, app.db.Model(&db.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePostWithImage(t *testing.T) {
	app := setupTestApp(t)
	_, cookies := app.register("alice")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, values := range validPostForm(app, "With Image") {
		require.NoError(t, writer.WriteField(key, values[0]))
	}
	part, err := writer.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, writer.Close())

	w := app.do(http.MethodPost, "/posts/create/", body, writer.FormDataContentType(), cookies)
	require.Equal(t, http.StatusFound, w.Code)

	var post db.Post
	require.NoError(t, app.db.Where("title = ?", "With Image").First(&post).Error)
	require.True(t, strings.HasPrefix(post.Image, "/media/"), "image url %q", post.Image)

	_, err = os.Stat(filepath.Join(app.uploadDir, filepath.Base(post.Image)))
	assert.NoError(t, err)

	served := app.get(post.Image, nil)
	assert.Equal(t, http.StatusOK, served.Code)
}

func TestCreatePostRejectsNonImageUpload(t *testing.T) {
	app := setupTestApp(t)
	_, cookies := app.register("alice")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, values := range validPostForm(app, "Bad Image") {
		require.NoError(t, writer.WriteField(key, values[0]))
	}
	part, err := writer.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text pretending to be a picture"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := app.do(http.MethodPost, "/posts/create/", body, writer.FormDataContentType(), cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Upload a valid image")

	var count int64
	require.NoError(t, app.db.Model(&db.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePostWithImageAndUnknownReferenceLeavesNoFile(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{name: "unknown category", field: "category"},
		{name: "unknown location", field: "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t)
			_, cookies := app.register("alice")

			form := validPostForm(app, "Orphan Image")
			form.Set(tt.field, "999")

			body := &bytes.Buffer{}
			writer := multipart.NewWriter(body)
			for key, values := range form {
				require.NoError(t, writer.WriteField(key, values[0]))
			}
			part, err := writer.CreateFormFile("image", "cover.png")
			require.NoError(t, err)
			require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 2, 2))))
			require.NoError(t, writer.Close())

			w := app.do(http.MethodPost, "/posts/create/", body, writer.FormDataContentType(), cookies)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "Select a valid choice.")

			entries, err := os.ReadDir(app.uploadDir)
			require.NoError(t, err)
			assert.Empty(t, entries)

			var count int64
			require.NoError(t, app.db.Model(&db.Post{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestEditPostByAuthor(t *testing.T) {
	app := setupTestApp(t)
	author, cookies := app.register("alice")
	post := app.createPost(author, "Original", time.Now().Add(-time.Hour), true)

	form := app.get(postPath(post.ID, "edit/"), cookies)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `value="Original"`)

	values := validPostForm(app, "Edited")
	values.Del("is_published")
	w := app.postForm(postPath(post.ID, "edit/"), values, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post.ID, ""), w.Header().Get("Location"))

	updated, err := app.reloadPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.False(t, updated.IsPublished)
	assert.Equal(t, author.ID, updated.AuthorID)
}

func TestEditPostByOtherUserRedirectsToDetail(t *testing.T) {
	app := setupTestApp(t)
	author, _ := app.register("alice")
	_, otherCookies := app.register("bob")
	post := app.createPost(author, "Original", time.Now().Add(-time.Hour), true)

	w := app.get(postPath(post.ID, "edit/"), otherCookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post.ID, ""), w.Header().Get("Location"))

	w = app.postForm(postPath(post.ID, "edit/"), validPostForm(app, "Hijacked"), otherCookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post.ID, ""), w.Header().Get("Location"))

	unchanged, err := app.reloadPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", unchanged.Title)
}

func TestEditPostAnonymousRedirectsToLogin(t *testing.T) {
	app := setupTestApp(t)
	author, _ := app.register("alice")
	post := app.createPost(author, "Original", time.Now().Add(-time.Hour), true)

	w := app.get(postPath(post.ID, "edit/"), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="))
}

func TestEditMissingPostIsNotFound(t *testing.T) {
	app := setupTestApp(t)
	_, cookies := app.register("alice")

	assert.Equal(t, http.StatusNotFound, app.get("/posts/9999/edit/", cookies).Code)
	assert.Equal(t, http.StatusNotFound, app.get("/posts/9999/delete/", cookies).Code)
}

func TestDeletePostConfirmsOnGetAndDeletesOnPost(t *testing.T) {
	app := setupTestApp(t)
	author, cookies := app.register("alice")
	_, otherCookies := app.register("bob")
	post := app.createPost(author, "Doomed", time.Now().Add(-time.Hour), true)
	require.NoError(t, app.db.Create(&db.Comment{Text: "bye", PostID: post.ID, AuthorID: author.ID}).Error)

	confirm := app.get(postPath(post.ID, "delete/"), cookies)
	require.Equal(t, http.StatusOK, confirm.Code)
	assert.Contains(t, confirm.Body.String(), `value="Doomed"`)
	_, err := app.reloadPost(post.ID)
	require.NoError(t, err, "GET must not delete")

	denied := app.postForm(postPath(post.ID, "delete/"), url.Values{}, otherCookies)
	require.Equal(t, http.StatusFound, denied.Code)
	assert.Equal(t, postPath(post.ID, ""), denied.Header().Get("Location"))
	_, err = app.reloadPost(post.ID)
	require.NoError(t, err, "other user must not delete")

	w := app.postForm(postPath(post.ID, "delete/"), url.Values{}, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	_, err = app.reloadPost(post.ID)
	assert.Error(t, err)

	var comments int64
	require.NoError(t, app.db.Model(&db.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Zero(t, comments)
}
