package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// postFormPage 汇总渲染 create.html 所需的数据
type postFormPage struct {
	title    string
	action   string
	editing  bool
	deleting bool
	form     postForm
	errors   fieldErrors
}

func (a *API) renderPostForm(c *gin.Context, status int, page postFormPage) {
	ctx := c.Request.Context()
	categories, err := a.categories.List(ctx)
	if err != nil {
		a.serverError(c, err)
		return
	}
	locations, err := a.locations.List(ctx)
	if err != nil {
		a.serverError(c, err)
		return
	}

	if page.errors == nil {
		page.errors = fieldErrors{}
	}

	a.renderHTML(c, status, "create.html", gin.H{
		"title":      page.title,
		"action":     page.action,
		"editing":    page.editing,
		"deleting":   page.deleting,
		"form":       page.form,
		"errors":     page.errors,
		"categories": categories,
		"locations":  locations,
	})
}

// ShowCreatePost 渲染空白的文章表单。
func (a *API) ShowCreatePost(c *gin.Context) {
	a.renderPostForm(c, http.StatusOK, postFormPage{
		title:  "New post",
		action: "/posts/create/",
		form:   postForm{IsPublished: "true"},
	})
}

// CreatePost 保存新文章，作者取自当前会话，成功后跳转到作者主页。
func (a *API) CreatePost(c *gin.Context) {
	user := currentUser(c)
	page := postFormPage{title: "New post", action: "/posts/create/"}

	input, ok := a.bindPost(c, &page)
	if !ok {
		a.renderPostForm(c, http.StatusOK, page)
		return
	}

	_, err := a.posts.Create(c.Request.Context(), user.ID, input)
	a.recordOperation("post", "create", err)
	if err != nil {
		a.discardImage(input.Image)
		if a.postInputError(err, page.errors) {
			a.renderPostForm(c, http.StatusOK, page)
			return
		}
		a.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// ShowEditPost 渲染预填充的文章编辑表单。
func (a *API) ShowEditPost(c *gin.Context) {
	post := currentPost(c)
	a.renderPostForm(c, http.StatusOK, postFormPage{
		title:   "Edit post",
		action:  editPostURL(post.ID),
		editing: true,
		form:    postFormFromModel(post),
	})
}

// UpdatePost 保存作者对文章的修改，成功后跳转到文章详情。
func (a *API) UpdatePost(c *gin.Context) {
	post := currentPost(c)
	page := postFormPage{title: "Edit post", action: editPostURL(post.ID), editing: true}

	input, ok := a.bindPost(c, &page)
	page.form.CurrentImage = post.Image
	if !ok {
		a.renderPostForm(c, http.StatusOK, page)
		return
	}

	_, err := a.posts.Update(c.Request.Context(), post.ID, input)
	a.recordOperation("post", "update", err)
	if err != nil {
		a.discardImage(input.Image)
		if a.postInputError(err, page.errors) {
			a.renderPostForm(c, http.StatusOK, page)
			return
		}
		if errors.Is(err, service.ErrPostNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(post.ID))
}

// ShowDeletePost 以只读表单的形式展示待删除的文章，供作者确认。
func (a *API) ShowDeletePost(c *gin.Context) {
	post := currentPost(c)
	a.renderPostForm(c, http.StatusOK, postFormPage{
		title:    "Delete post",
		action:   deletePostURL(post.ID),
		deleting: true,
		form:     postFormFromModel(post),
	})
}

// DeletePost 删除文章及其评论后返回首页。
func (a *API) DeletePost(c *gin.Context) {
	post := currentPost(c)

	err := a.posts.Delete(c.Request.Context(), post.ID)
	a.recordOperation("post", "delete", err)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.notFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// bindPost 绑定并校验文章表单；返回 false 时 page.errors 已包含字段错误。
func (a *API) bindPost(c *gin.Context, page *postFormPage) (service.PostInput, bool) {
	var form postForm
	bindErr := c.ShouldBind(&form)
	page.form = form
	page.errors = fieldErrors{}
	if bindErr != nil {
		page.errors = bindingErrors(bindErr)
	}

	if strings.TrimSpace(form.Title) == "" {
		page.errors.add("title", "This field is required.")
	}
	if strings.TrimSpace(form.Text) == "" {
		page.errors.add("text", "This field is required.")
	}

	input := service.PostInput{
		Title:       form.Title,
		Text:        form.Text,
		IsPublished: form.Published(),
		ClearImage:  checkboxValue(form.ClearImage),
	}

	if form.PubDate != "" {
		pubDate, err := parsePubDate(form.PubDate)
		if err != nil {
			page.errors.add("pub_date", "Enter a valid date and time.")
		}
		input.PubDate = pubDate
	}

	if form.Category != "" {
		categoryID, err := parseOptionalUint(form.Category)
		if err != nil {
			page.errors.add("category", "Select a valid choice.")
		}
		input.CategoryID = categoryID
	}

	locationID, err := parseOptionalUint(form.Location)
	if err != nil {
		page.errors.add("location", "Select a valid choice.")
	}
	input.LocationID = locationID

	if len(page.errors) > 0 {
		return input, false
	}

	// 图片最后处理，表单其余部分无效时不落盘
	if err := a.posts.Validate(c.Request.Context(), input); err != nil {
		if !a.postInputError(err, page.errors) {
			a.log.Error("validate post", zap.Error(err))
			page.errors.add(nonFieldErrors, "The post could not be validated.")
		}
		return input, false
	}

	if file, err := c.FormFile("image"); err == nil && file.Size > 0 {
		stored, err := a.images.Save(file)
		switch {
		case errors.Is(err, service.ErrInvalidImage):
			page.errors.add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		case errors.Is(err, service.ErrImageTooLarge):
			page.errors.add("image", "The uploaded image is too large.")
		case err != nil:
			a.log.Error("save post image", zap.Error(err))
			page.errors.add("image", "The image could not be saved.")
		default:
			input.Image = stored.URL
		}
	}

	return input, len(page.errors) == 0
}

// discardImage 删除本次请求已保存但未被文章引用的图片。
func (a *API) discardImage(url string) {
	if url == "" {
		return
	}
	if err := a.images.Remove(url); err != nil {
		a.log.Warn("remove orphaned image", zap.String("url", url), zap.Error(err))
	}
}

// postInputError 将服务层的校验错误映射到表单字段，无法映射时返回 false。
func (a *API) postInputError(err error, errs fieldErrors) bool {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		errs.add("category", "Select a valid choice.")
	case errors.Is(err, service.ErrLocationNotFound):
		errs.add("location", "Select a valid choice.")
	case errors.Is(err, service.ErrPostInvalidInput):
		errs.add(nonFieldErrors, err.Error())
	default:
		return false
	}
	return true
}

func editPostURL(id uint) string {
	return postURL(id) + "edit/"
}

func deletePostURL(id uint) string {
	return postURL(id) + "delete/"
}
