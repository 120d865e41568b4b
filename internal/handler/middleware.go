package handler

import (
	"errors"
	"net/http"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserIDKey  = "user_id"
	currentUserKey    = "currentUser"
	currentPostKey    = "currentPost"
	currentCommentKey = "currentComment"
)

// LoadUser 从会话中恢复当前用户；用户已被删除时清空会话。
func (a *API) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := sessionUserID(session.Get(sessionUserIDKey))
		if !ok {
			c.Next()
			return
		}

		user, err := a.users.GetByID(c.Request.Context(), id)
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			session.Clear()
			_ = session.Save()
		case err != nil:
			a.serverError(c, err)
			return
		default:
			c.Set(currentUserKey, user)
			c.Set(sessionUserIDKey, user.ID)
		}

		c.Next()
	}
}

func sessionUserID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, v > 0
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case uint64:
		return uint(v), v > 0
	default:
		return 0, false
	}
}

func currentUser(c *gin.Context) *db.User {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*db.User)
	return user
}

// AuthRequired 未登录时跳转到登录页，并通过 next 参数带回当前地址。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusFound, loginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePostAuthor 加载 :id 对应的文章，非作者访问时静默跳回文章详情页。
func (a *API) RequirePostAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseUintParam(c, "id")
		if err != nil {
			a.notFound(c)
			return
		}

		post, err := a.posts.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, service.ErrPostNotFound) {
				a.notFound(c)
				return
			}
			a.serverError(c, err)
			return
		}

		if !isOwner(currentUser(c), post.AuthorID) {
			a.metrics.IncrementAuthorizationDenial("post")
			c.Redirect(http.StatusFound, postURL(post.ID))
			c.Abort()
			return
		}

		c.Set(currentPostKey, post)
		c.Next()
	}
}

// RequireCommentAuthor 加载属于 :id 文章的 :comment_id 评论，非作者访问时跳回文章详情页。
func (a *API) RequireCommentAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := parseUintParam(c, "id")
		if err != nil {
			a.notFound(c)
			return
		}
		commentID, err := parseUintParam(c, "comment_id")
		if err != nil {
			a.notFound(c)
			return
		}

		comment, err := a.comments.Get(c.Request.Context(), postID, commentID)
		if err != nil {
			if errors.Is(err, service.ErrCommentNotFound) {
				a.notFound(c)
				return
			}
			a.serverError(c, err)
			return
		}

		if !isOwner(currentUser(c), comment.AuthorID) {
			a.metrics.IncrementAuthorizationDenial("comment")
			c.Redirect(http.StatusFound, postURL(postID))
			c.Abort()
			return
		}

		c.Set(currentCommentKey, comment)
		c.Next()
	}
}

func currentPost(c *gin.Context) *db.Post {
	value, _ := c.Get(currentPostKey)
	post, _ := value.(*db.Post)
	return post
}

func currentComment(c *gin.Context) *db.Comment {
	value, _ := c.Get(currentCommentKey)
	comment, _ := value.(*db.Comment)
	return comment
}
