package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/web"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// nonFieldErrors 是与具体字段无关的表单错误的键名。
const nonFieldErrors = "__all__"

// fieldErrors 将字段名映射为展示给用户的错误信息
type fieldErrors map[string]string

func (e fieldErrors) add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

var registerTagNamesOnce sync.Once

// registerFormTagNames 让校验错误使用 form 标签中的字段名（如 pub_date）。
func registerFormTagNames() {
	registerTagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// bindingErrors 将 ShouldBind 返回的错误转换为字段错误。
func bindingErrors(err error) fieldErrors {
	errs := fieldErrors{}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errs.add(nonFieldErrors, "The submitted form could not be read.")
		return errs
	}

	for _, fe := range validationErrs {
		errs.add(fe.Field(), validationMessage(fe))
	}
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}

// postForm 对应文章创建与编辑表单
type postForm struct {
	Title       string `form:"title" binding:"required,max=256"`
	Text        string `form:"text" binding:"required"`
	PubDate     string `form:"pub_date" binding:"required"`
	Location    string `form:"location"`
	Category    string `form:"category" binding:"required"`
	IsPublished string `form:"is_published"`
	ClearImage  string `form:"image_clear"`

	CurrentImage string `form:"-"`
}

// Published 报告复选框是否被勾选。
func (f postForm) Published() bool {
	return checkboxValue(f.IsPublished)
}

func postFormFromModel(post *db.Post) postForm {
	form := postForm{
		Title:        post.Title,
		Text:         post.Text,
		PubDate:      post.PubDate.UTC().Format(web.DateTimeLocalLayout),
		CurrentImage: post.Image,
	}
	if post.LocationID != nil {
		form.Location = fmt.Sprint(*post.LocationID)
	}
	if post.CategoryID != nil {
		form.Category = fmt.Sprint(*post.CategoryID)
	}
	if post.IsPublished {
		form.IsPublished = "true"
	}
	return form
}

var pubDateLayouts = []string{
	web.DateTimeLocalLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// parsePubDate 解析 datetime-local 输入，按 UTC 处理。
func parsePubDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid publication date %q", raw)
}

func checkboxValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

// commentForm 对应评论表单
type commentForm struct {
	Text string `form:"text" binding:"required"`
}

// profileForm 对应个人资料编辑表单
type profileForm struct {
	Username  string `form:"username" binding:"required,max=150"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
}

func profileFormFromModel(user *db.User) profileForm {
	return profileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}

// loginForm 对应登录表单
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// registrationForm 对应注册表单
type registrationForm struct {
	Username  string `form:"username" binding:"required,max=150"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}
