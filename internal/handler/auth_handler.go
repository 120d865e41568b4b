package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/blogicum/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title":  "Log in",
		"next":   c.Query("next"),
		"form":   loginForm{},
		"errors": fieldErrors{},
	})
}

// Login 校验用户名与密码，成功后写入会话并跳转到 next 指定的站内地址
func (a *API) Login(c *gin.Context) {
	var form loginForm
	errs := fieldErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = bindingErrors(err)
	}

	if len(errs) == 0 {
		user, err := a.users.Authenticate(c.Request.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			session := sessions.Default(c)
			session.Clear()
			session.Set(sessionUserIDKey, user.ID)
			if err := session.Save(); err != nil {
				a.serverError(c, fmt.Errorf("save session: %w", err))
				return
			}
			a.log.Info("user logged in", zap.Uint("user_id", user.ID))
			c.Redirect(http.StatusFound, safeNext(form.Next))
			return
		case errors.Is(err, service.ErrInvalidCredentials):
			errs.add(nonFieldErrors, "Please enter a correct username and password.")
		default:
			a.serverError(c, err)
			return
		}
	}

	form.Password = ""
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title":  "Log in",
		"next":   form.Next,
		"form":   form,
		"errors": errs,
	})
}

// Logout 清空会话后回到首页
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusFound, "/")
}

// ShowRegistration 渲染注册页面
func (a *API) ShowRegistration(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "registration.html", gin.H{
		"title":  "Sign up",
		"form":   registrationForm{},
		"errors": fieldErrors{},
	})
}

// Register 创建新账号后跳转到登录页
func (a *API) Register(c *gin.Context) {
	var form registrationForm
	errs := fieldErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = bindingErrors(err)
	}
	if len(errs) == 0 && form.Password1 != form.Password2 {
		errs.add("password2", "The two password fields didn't match.")
	}

	if len(errs) == 0 {
		user, err := a.users.Register(c.Request.Context(), form.Username, form.Password1)
		a.recordOperation("user", "create", err)
		switch {
		case err == nil:
			a.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
			c.Redirect(http.StatusFound, "/auth/login/")
			return
		case errors.Is(err, service.ErrUsernameTaken):
			errs.add("username", "A user with that username already exists.")
		case errors.Is(err, service.ErrUsernameInvalid):
			errs.add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		case errors.Is(err, service.ErrPasswordInvalid):
			errs.add("password1", fmt.Sprintf("This password is too short. It must contain at least %d characters.", service.MinPasswordLength))
		default:
			a.serverError(c, err)
			return
		}
	}

	form.Password1, form.Password2 = "", ""
	a.renderHTML(c, http.StatusOK, "registration.html", gin.H{
		"title":  "Sign up",
		"form":   form,
		"errors": errs,
	})
}
