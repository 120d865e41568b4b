package handler

import (
	"time"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/metrics"
	"github.com/blogicum/internal/paginate"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	users      *service.UserService
	posts      *service.PostService
	comments   *service.CommentService
	categories *service.CategoryService
	locations  *service.LocationService
	images     *service.ImageService
	metrics    metrics.Provider
	log        *zap.Logger
}

// Options 描述构造 API 时可替换的依赖
type Options struct {
	Paginator paginate.Paginator
	UploadDir string
	UploadURL string
	Metrics   metrics.Provider
	Logger    *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	registerFormTagNames()

	return &API{
		db:         gdb,
		users:      service.NewUserService(gdb),
		posts:      service.NewPostService(gdb, opts.Paginator),
		comments:   service.NewCommentService(gdb),
		categories: service.NewCategoryService(gdb),
		locations:  service.NewLocationService(gdb),
		images:     service.NewImageService(opts.UploadDir, opts.UploadURL),
		metrics:    opts.Metrics,
		log:        opts.Logger,
	}
}

// renderHTML 渲染页面，并附加当前登录用户与页脚年份。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["currentUser"]; !exists {
		if user := currentUser(c); user != nil {
			payload["currentUser"] = user
		}
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, template, payload)
}

// recordOperation 记录一次内容变更的结果。
func (a *API) recordOperation(entity, operation string, err error) {
	a.metrics.IncrementContentOperation(entity, operation, err == nil)
}

func isOwner(user *db.User, authorID uint) bool {
	return user != nil && user.ID == authorID
}
