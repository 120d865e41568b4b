package handler

import (
	"errors"
	"net/http"

	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
)

// ShowProfile 渲染用户主页。本人可以看到自己的全部文章，其他访客只能看到对外可见的文章。
func (a *API) ShowProfile(c *gin.Context) {
	ctx := c.Request.Context()
	profile, err := a.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	owner := isOwner(currentUser(c), profile.ID)
	page, err := a.posts.ListByAuthor(ctx, profile.ID, owner, c.Query("page"))
	if err != nil {
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "profile.html", gin.H{
		"title":   profile.Username,
		"profile": profile,
		"isOwner": owner,
		"page":    page,
	})
}

// ShowEditProfile 渲染当前用户的资料编辑表单。
func (a *API) ShowEditProfile(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "user.html", gin.H{
		"title":  "Edit profile",
		"form":   profileFormFromModel(currentUser(c)),
		"errors": fieldErrors{},
	})
}

// UpdateProfile 保存当前用户的资料，成功后跳转到其主页。
func (a *API) UpdateProfile(c *gin.Context) {
	user := currentUser(c)

	var form profileForm
	errs := fieldErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = bindingErrors(err)
	}

	if len(errs) == 0 {
		updated, err := a.users.UpdateProfile(c.Request.Context(), user.ID, service.ProfileInput{
			Username:  form.Username,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
		})
		a.recordOperation("profile", "update", err)
		switch {
		case err == nil:
			c.Redirect(http.StatusFound, profileURL(updated.Username))
			return
		case errors.Is(err, service.ErrUsernameTaken):
			errs.add("username", "A user with that username already exists.")
		case errors.Is(err, service.ErrUsernameInvalid):
			errs.add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		default:
			a.serverError(c, err)
			return
		}
	}

	a.renderHTML(c, http.StatusOK, "user.html", gin.H{
		"title":  "Edit profile",
		"form":   form,
		"errors": errs,
	})
}
