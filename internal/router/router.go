package router

import (
	"fmt"
	"net/http"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/handler"
	"github.com/blogicum/internal/logging"
	"github.com/blogicum/internal/metrics"
	"github.com/blogicum/internal/paginate"
	"github.com/blogicum/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionName = "blogicum_session"

// SetupRouter 配置 Gin 引擎、中间件与全部路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig, log *zap.Logger) (*gin.Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var provider metrics.Provider = metrics.Noop{}
	if cfg.MetricsEnabled {
		provider = metrics.NewPrometheusProvider()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	api := handler.NewAPI(gdb, handler.Options{
		Paginator: paginate.New(cfg.PaginateBy),
		UploadDir: cfg.UploadDir,
		UploadURL: cfg.UploadURLPath,
		Metrics:   provider,
		Logger:    log,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(log))
	r.Use(metrics.Middleware(provider))

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.LoadUser())

	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = 8 << 20

	// 用户上传的文章配图
	if cfg.UploadDir != "" && cfg.UploadURLPath != "" {
		r.Static(cfg.UploadURLPath, cfg.UploadDir)
	}

	r.GET("/ping", handler.Ping)
	r.GET("/healthz", api.HealthCheck)
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/", api.ShowIndex)
	r.GET("/category/:slug/", api.ShowCategory)
	r.GET("/posts/:id/", api.ShowPost)
	r.GET("/profile/:username/", api.ShowProfile)

	authPages := r.Group("/auth")
	{
		authPages.GET("/login/", api.ShowLoginPage)
		authPages.POST("/login/", api.Login)
		authPages.GET("/logout/", api.Logout)
		authPages.POST("/logout/", api.Logout)
		authPages.GET("/registration/", api.ShowRegistration)
		authPages.POST("/registration/", api.Register)
	}

	// 需要登录的路由
	auth := r.Group("")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/posts/create/", api.ShowCreatePost)
		auth.POST("/posts/create/", api.CreatePost)
		auth.POST("/posts/:id/comment/", api.AddComment)

		auth.GET("/profile/edit/", api.ShowEditProfile)
		auth.POST("/profile/edit/", api.UpdateProfile)
		auth.GET("/edit_profile/", api.ShowEditProfile)
		auth.POST("/edit_profile/", api.UpdateProfile)

		// 仅作者本人可以修改或删除文章
		postOwner := auth.Group("/posts/:id")
		postOwner.Use(api.RequirePostAuthor())
		{
			postOwner.GET("/edit/", api.ShowEditPost)
			postOwner.POST("/edit/", api.UpdatePost)
			postOwner.GET("/delete/", api.ShowDeletePost)
			postOwner.POST("/delete/", api.DeletePost)
		}

		commentOwner := auth.Group("/posts/:id")
		commentOwner.Use(api.RequireCommentAuthor())
		{
			commentOwner.GET("/edit_comment/:comment_id/", api.ShowEditComment)
			commentOwner.POST("/edit_comment/:comment_id/", api.UpdateComment)
			commentOwner.GET("/delete_comment/:comment_id/", api.ShowDeleteComment)
			commentOwner.POST("/delete_comment/:comment_id/", api.DeleteComment)
		}
	}

	r.NoRoute(api.NotFound)

	return r, nil
}
