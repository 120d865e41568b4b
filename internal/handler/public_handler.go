package handler

import (
	"errors"
	"net/http"

	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
)

// ShowIndex 渲染首页：所有对外可见的文章，按发布时间倒序分页。
func (a *API) ShowIndex(c *gin.Context) {
	page, err := a.posts.ListPublished(c.Request.Context(), c.Query("page"))
	if err != nil {
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "index.html", gin.H{
		"title": "Latest posts",
		"page":  page,
	})
}

// ShowCategory 渲染已发布分类下的可见文章。
func (a *API) ShowCategory(c *gin.Context) {
	category, err := a.categories.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	page, err := a.posts.ListByCategory(c.Request.Context(), category.ID, c.Query("page"))
	if err != nil {
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "category.html", gin.H{
		"title":    category.Title,
		"category": category,
		"page":     page,
	})
}

// ShowPost 渲染文章详情。作者可以看到自己未发布的文章，其他人只能看到对外可见的文章。
func (a *API) ShowPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.notFound(c)
		return
	}

	ctx := c.Request.Context()
	post, err := a.posts.Get(ctx, id)
	if err == nil && !isOwner(currentUser(c), post.AuthorID) {
		post, err = a.posts.GetPublished(ctx, id)
	}
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	comments, err := a.comments.ListForPost(ctx, post.ID)
	if err != nil {
		a.serverError(c, err)
		return
	}

	body, err := renderMarkdown(post.Text)
	if err != nil {
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "detail.html", gin.H{
		"title":    post.Title,
		"post":     post,
		"body":     body,
		"comments": comments,
		"isAuthor": isOwner(currentUser(c), post.AuthorID),
	})
}
