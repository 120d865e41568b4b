package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
)

// AddComment 为文章添加评论。无论评论是否有效，最终都回到文章详情页。
func (a *API) AddComment(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		a.notFound(c)
		return
	}

	ctx := c.Request.Context()
	if _, err := a.posts.Get(ctx, postID); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	var form commentForm
	if err := c.ShouldBind(&form); err == nil && strings.TrimSpace(form.Text) != "" {
		_, err := a.comments.Create(ctx, postID, currentUser(c).ID, form.Text)
		a.recordOperation("comment", "create", err)
		if err != nil && !errors.Is(err, service.ErrCommentEmpty) {
			a.serverError(c, err)
			return
		}
	}

	c.Redirect(http.StatusFound, postURL(postID))
}

func (a *API) renderComment(c *gin.Context, comment *db.Comment, deleting bool, form commentForm, errs fieldErrors) {
	title := "Edit comment"
	if deleting {
		title = "Delete comment"
	}
	if errs == nil {
		errs = fieldErrors{}
	}
	a.renderHTML(c, http.StatusOK, "comment.html", gin.H{
		"title":    title,
		"comment":  comment,
		"deleting": deleting,
		"form":     form,
		"errors":   errs,
	})
}

// ShowEditComment 渲染评论编辑表单。
func (a *API) ShowEditComment(c *gin.Context) {
	comment := currentComment(c)
	a.renderComment(c, comment, false, commentForm{Text: comment.Text}, nil)
}

// UpdateComment 保存评论修改后回到文章详情页。
func (a *API) UpdateComment(c *gin.Context) {
	comment := currentComment(c)

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderComment(c, comment, false, form, bindingErrors(err))
		return
	}
	if strings.TrimSpace(form.Text) == "" {
		a.renderComment(c, comment, false, form, fieldErrors{"text": "This field is required."})
		return
	}

	_, err := a.comments.Update(c.Request.Context(), comment.ID, form.Text)
	a.recordOperation("comment", "update", err)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(comment.PostID))
}

// ShowDeleteComment 展示待删除的评论，供作者确认。
func (a *API) ShowDeleteComment(c *gin.Context) {
	comment := currentComment(c)
	a.renderComment(c, comment, true, commentForm{Text: comment.Text}, nil)
}

// DeleteComment 删除评论后回到文章详情页。
func (a *API) DeleteComment(c *gin.Context) {
	comment := currentComment(c)

	err := a.comments.Delete(c.Request.Context(), comment.ID)
	a.recordOperation("comment", "delete", err)
	if err != nil && !errors.Is(err, service.ErrCommentNotFound) {
		a.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(comment.PostID))
}
