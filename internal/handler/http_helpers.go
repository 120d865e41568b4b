package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parseOptionalUint 解析下拉框提交的 ID，空字符串表示未选择。
func parseOptionalUint(raw string) (*uint, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("invalid id %q", raw)
	}
	value := uint(id)
	return &value, nil
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func loginURL(next string) string {
	return "/auth/login/?next=" + url.QueryEscape(next)
}

// safeNext 只接受站内路径，防止登录后跳转到外部站点。
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (a *API) notFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{"title": "Page not found"})
	c.Abort()
}

func (a *API) serverError(c *gin.Context, err error) {
	c.Error(err)
	a.renderHTML(c, http.StatusInternalServerError, "500.html", gin.H{"title": "Server error"})
	c.Abort()
}

// NotFound 用作 gin 的 NoRoute 处理器。
func (a *API) NotFound(c *gin.Context) {
	a.notFound(c)
}
